package main

import "github.com/redactyl/gdprmask/cmd/gdprmask"

func main() { gdprmask.Execute() }
