/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/tristendillon/pypack/cmd"

func main() {
	cmd.Execute()
}
