// Command ussdflow manages USSD flow workspaces and the flow catalog.
package main

func main() {
	Execute()
}
