// Package locale implements per-locale boss locale files: the on-disk
// Lua codec and the synchronizer that merges extracted records, existing
// file content, and freshly fetched names.
package locale

import "fmt"

// Locale describes one supported game locale and the wowhead subdomain
// serving it.
type Locale struct {
	Code      string
	Subdomain string
}

// Supported lists every locale a synchronization pass covers, in output
// order. enUS is not fetched: the English names come from the source
// module itself.
var Supported = []Locale{
	{Code: "deDE", Subdomain: "de"},
	{Code: "esES", Subdomain: "es"},
	{Code: "frFR", Subdomain: "fr"},
	{Code: "itIT", Subdomain: "it"},
	{Code: "ptBR", Subdomain: "pt"},
	{Code: "ruRU", Subdomain: "ru"},
	{Code: "koKR", Subdomain: "ko"},
	{Code: "zhCN", Subdomain: "cn"},
}

// ByCode returns the supported locale with the given code.
func ByCode(code string) (Locale, bool) {
	for _, l := range Supported {
		if l.Code == code {
			return l, true
		}
	}
	return Locale{}, false
}

// Header renders the locale registration line for a module. esES modules
// also serve esMX clients, so that header carries a fallback registration.
func (l Locale) Header(module string) string {
	if l.Code == "esES" {
		return fmt.Sprintf("local L = BigWigs:NewBossLocale(%q, \"esES\") or BigWigs:NewBossLocale(%q, \"esMX\")", module, module)
	}
	return fmt.Sprintf("local L = BigWigs:NewBossLocale(%q, %q)", module, l.Code)
}
