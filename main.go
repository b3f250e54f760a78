package main

import "github.com/kashguard/go-kms-signer/cmd"

func main() {
	cmd.Execute()
}
