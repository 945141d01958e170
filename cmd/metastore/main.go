package main

import (
	"github.com/treeverse/metastore/cmd/metastore/cmd"
)

func main() {
	cmd.Execute()
}
