package main

import "github.com/receiptworks/voucherscan/cmd/voucherscan/cmd"

func main() {
	cmd.Execute()
}
