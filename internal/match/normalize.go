// Package match provides name normalization and similarity scoring used by
// entity resolution. Normalizers are pure and idempotent; empty input maps to
// empty output.
package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// companySuffixes lists corporate and sector suffixes stripped during company
// normalization. Longer forms come first so "biopharmaceuticals" is removed
// before "pharma" can match inside it.
var companySuffixes = []string{
	"incorporated", "corporation", "limited", "company", "holdings",
	"biopharmaceuticals", "biotherapeutics", "pharmaceuticals",
	"biotechnology", "biosciences", "lifesciences", "life sciences",
	"laboratories", "laboratory", "therapeutics", "biopharma", "healthcare",
	"biotech", "sciences", "research", "development", "pharma",
	"international", "worldwide", "global", "group",
	"inc", "corp", "ltd", "llc", "plc", "gmbh", "ag", "sa",
	"nv", "se", "co", "kg", "pty", "pvt",
}

// dottedCompanySuffixes are trimmed from the tail before punctuation removal,
// which would otherwise split them into stray letters ("s.a." -> "s a") that
// no longer match the suffix list.
var dottedCompanySuffixes = []string{
	"l.l.c.", "g.m.b.h.", "p.l.c.", "inc.", "corp.", "ltd.",
	"a.g.", "s.a.", "n.v.", "k.g.", "co.", "pty.", "pvt.",
}

// conservativeSuffixes is the fallback list used when full normalization
// strips a name below the minimum useful length.
var conservativeSuffixes = []string{
	"inc.", "inc", "ltd.", "ltd", "llc", "corp.", "corp", "plc", "ag", "sa", "gmbh",
}

var companyReplacements = strings.NewReplacer(
	"&", " and ",
	"+", " and ",
)

var personTitles = []string{
	"dr.", "dr", "prof.", "prof", "mr.", "mr", "mrs.", "mrs",
	"ms.", "ms", "miss", "sir", "dame",
}

var personSuffixes = []string{
	"jr.", "jr", "sr.", "sr", "iii", "ii", "iv",
	"ph.d.", "phd", "m.d.", "md", "m.b.a.", "mba", "esq.", "esq",
}

var titleAbbreviations = []struct{ abbrev, full string }{
	{"svp", "senior vice president"},
	{"evp", "executive vice president"},
	{"vp", "vice president"},
	{"ceo", "chief executive officer"},
	{"coo", "chief operating officer"},
	{"cfo", "chief financial officer"},
	{"cto", "chief technology officer"},
	{"cmo", "chief medical officer"},
	{"cso", "chief scientific officer"},
	{"cbo", "chief business officer"},
	{"dir", "director"},
	{"sr", "senior"},
	{"jr", "junior"},
	{"mgr", "manager"},
	{"mfg", "manufacturing"},
	{"ops", "operations"},
	{"dev", "development"},
	{"r&d", "research and development"},
}

var titleFillerRe = regexp.MustCompile(`\b(of|the|and|for|in|at)\b`)

var nonNamePunctRe = regexp.MustCompile(`[^\w\s\-']`)
var allPunctRe = regexp.MustCompile(`[^\w\s]`)

var diacriticStripper = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeCompany canonicalizes a company name for matching. Lowercases,
// strips legal and sector suffixes, maps "&"/"+" to "and", drops punctuation
// except hyphens, collapses whitespace. Idempotent and nil-safe.
//
// A safeguard keeps over-normalized names usable: if stripping leaves fewer
// than three characters, only the conservative corporate suffixes are removed
// instead ("R-Pharm" stays "r-pharm").
func NormalizeCompany(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	lowered := strings.ToLower(name)
	n := companyReplacements.Replace(lowered)

	for _, suffix := range dottedCompanySuffixes {
		n = strings.TrimSuffix(strings.TrimRight(strings.TrimSpace(n), ","), " "+suffix)
	}
	n = nonNamePunctRe.ReplaceAllString(n, " ")

	for _, suffix := range companySuffixes {
		n = stripWord(n, suffix)
	}

	n = collapseSpaces(n)
	n = strings.Trim(n, "- ")

	if len(n) >= 3 {
		return n
	}

	// Over-stripped; retry conservatively.
	fallback := lowered
	for _, suffix := range conservativeSuffixes {
		fallback = trailingWordRe(suffix).ReplaceAllString(fallback, "")
	}
	fallback = allPunctRe.ReplaceAllString(strings.ReplaceAll(fallback, "-", " "), "")
	fallback = collapseSpaces(fallback)
	if len(fallback) >= 3 {
		return fallback
	}
	return lowered
}

// NormalizePerson canonicalizes a person name: lowercases, flips "Last, First",
// strips honorifics and credential suffixes, folds diacritics (María -> maria),
// drops punctuation, collapses whitespace. Idempotent and nil-safe.
func NormalizePerson(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	n := strings.ToLower(name)

	if i := strings.Index(n, ","); i >= 0 {
		head, tail := strings.TrimSpace(n[:i]), strings.TrimSpace(n[i+1:])
		switch {
		case tail == "" || isPersonSuffix(tail):
			// "John Smith, PhD" is a credential, not a Last, First flip.
			n = head
		default:
			n = tail + " " + head
		}
	}

	for _, t := range personTitles {
		if strings.HasPrefix(n, t+" ") {
			n = strings.TrimPrefix(n, t+" ")
			break
		}
	}
	for _, s := range personSuffixes {
		n = strings.TrimSuffix(strings.TrimSpace(n), " "+s)
	}

	if folded, _, err := transform.String(diacriticStripper, n); err == nil {
		n = folded
	}

	n = allPunctRe.ReplaceAllString(n, "")
	return collapseSpaces(n)
}

// NormalizeTitle canonicalizes a job title: lowercases, expands common
// abbreviations (VP, Sr., mfg), drops filler words and punctuation.
// "VP, Manufacturing" -> "vice president manufacturing".
func NormalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}

	n := strings.ToLower(title)
	for _, a := range titleAbbreviations {
		n = wordRe(a.abbrev).ReplaceAllString(n, a.full)
	}
	n = titleFillerRe.ReplaceAllString(n, " ")
	n = allPunctRe.ReplaceAllString(strings.ReplaceAll(n, "-", " "), " ")
	return collapseSpaces(n)
}

func isPersonSuffix(s string) bool {
	for _, suffix := range personSuffixes {
		if s == suffix {
			return true
		}
	}
	return false
}

func stripWord(s, word string) string {
	return collapseSpaces(wordRe(word).ReplaceAllString(s, " "))
}

var wordReCache = map[string]*regexp.Regexp{}

func wordRe(word string) *regexp.Regexp {
	if re, ok := wordReCache[word]; ok {
		return re
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	wordReCache[word] = re
	return re
}

func trailingWordRe(word string) *regexp.Regexp {
	return regexp.MustCompile(`\s*\b` + regexp.QuoteMeta(word) + `\.?\s*$`)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
