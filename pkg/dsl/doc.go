/*
Package dsl provides a fluent builder for programmatically constructing flow graphs.

It is mostly used to seed workspaces and to write readable tests: every
route declared through the builder both stores the destination in the
source node's payload and emits the matching edge.

Example usage:

	b := dsl.New()
	b.Add("start").Start("main").Go("menu")
	b.Add("menu").Prompt("Menu", "1. Balance\n2. Airtime").
		Option("1", "Balance", "balance").
		Option("2", "Airtime", "airtime")
	b.Add("balance").Action("Balance", "GET", "https://api.example.com/balance")
	b.Add("airtime").Group("Airtime").MenuBranch()
	b.Add("airtime-start").Start("Airtime").In("airtime")

	nodes, edges, err := b.Build()
*/
package dsl
