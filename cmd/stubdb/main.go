// stubdb serves canned HTTP responses backed by pipe-delimited datasets.
package main

import "github.com/getmockd/stubdb/pkg/cli"

func main() {
	cli.Execute()
}
