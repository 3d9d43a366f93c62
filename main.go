package main

import "github.com/oracleot/algos-mastery-sub001/cmd"

func main() {
	cmd.Execute()
}
