// wikibot - batch tooling for MediaWiki wikis: continuation-aware list
// queries and throttled batch mutations over the action API.
package main

import "github.com/olgasafonova/wikibot/cmd"

func main() {
	cmd.Execute()
}
