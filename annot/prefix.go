package annot

import "strings"

// Kind selects the identifiers.org prefix table used when writing
// cross-references for an entity.
type Kind string

const (
	KindCompartment Kind = "compartment"
	KindReaction    Kind = "reaction"
	KindSpecies     Kind = "species"
)

// prefixes maps a database short name to the identifiers.org path fragment
// prepended to an external id. Some fragments carry the id prefix the database
// embeds in its uris (CHEBI:, META:, R-ALL-).
var prefixes = map[Kind]map[string]string{
	KindCompartment: {
		"mnx":  "metanetx.compartment/",
		"bigg": "bigg.compartment/",
		"seed": "seed/",
		"name": "name/",
	},
	KindReaction: {
		"mnx":       "metanetx.reaction/",
		"rhea":      "rhea/",
		"reactome":  "reactome/",
		"bigg":      "bigg.reaction/",
		"sabiork":   "sabiork.reaction/",
		"ec":        "ec-code/",
		"biocyc":    "biocyc/",
		"lipidmaps": "lipidmaps/",
		"uniprot":   "uniprot/",
	},
	KindSpecies: {
		"inchikey": "inchikey/",
		"pubchem":  "pubchem.compound/",
		"mnx":      "metanetx.chemical/",
		"chebi":    "chebi/CHEBI:",
		"bigg":     "bigg.metabolite/",
		"hmdb":     "hmdb/",
		"kegg_c":   "kegg.compound/",
		"kegg_d":   "kegg.drug/",
		"biocyc":   "biocyc/META:",
		"seed":     "seed.compound/",
		"metacyc":  "metacyc.compound/",
		"sabiork":  "sabiork.compound/",
		"reactome": "reactome/R-ALL-",
	},
}

// databases is the reverse view: full database name (the uri segment before
// the id) back to its short name.
var databases = map[Kind]map[string]string{}

func init() {
	for kind, table := range prefixes {
		databases[kind] = map[string]string{}
		for short, prefix := range table {
			db := strings.SplitN(prefix, "/", 2)[0]
			databases[kind][db] = short
		}
		// kegg.compound and kegg.drug both answer to kegg when diffing.
		if kind == KindSpecies {
			databases[kind]["kegg.compound"] = "kegg"
			databases[kind]["kegg.drug"] = "kegg"
		}
	}
}
