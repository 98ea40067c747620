package main

import "invoiceflow/backend/internal/cli"

func main() {
	cli.Execute()
}
