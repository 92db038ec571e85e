// Command curator runs the product curation service.
package main

import "github.com/curatorhq/curator/cmd"

func main() {
	cmd.Execute()
}
