// Command portal runs the business portal API and its maintenance tasks.
//
//	portal serve                  start the HTTP API
//	portal seed --file f.yaml     load fixture accounts and service requests
//
// @title                       Vikram Portal API
// @version                     1.0
// @description                 Accounts, projects, service requests and messaging for the business portal.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
