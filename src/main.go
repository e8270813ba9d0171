package main

import (
	_ "git.biostar.network/biostar/biostar/src/admintools"
	_ "git.biostar.network/biostar/biostar/src/migration"
	"git.biostar.network/biostar/biostar/src/site"
)

func main() {
	site.SiteCommand.Execute()
}
