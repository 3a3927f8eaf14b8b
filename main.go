package main

import (
	"github.com/frahmantamala/visit-tracker/cmd"
)

func main() {
	cmd.Execute()
}
