package models

type Candidate struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

var Candidates = []Candidate{
	{Name: "BJP", Symbol: "bjp.png"},
	{Name: "Congress", Symbol: "congress.png"},
	{Name: "JDS", Symbol: "jds.png"},
	{Name: "AIDMK", Symbol: "aidmk.png"},
	{Name: "AITC", Symbol: "aitc.png"},
	{Name: "BRS", Symbol: "brs.png"},
	{Name: "BSP", Symbol: "bsp.png"},
	{Name: "AAP", Symbol: "aap.png"},
	{Name: "Shivsena", Symbol: "shivsena.png"},
	{Name: "SP", Symbol: "sp.png"},
	{Name: "OTHERS", Symbol: "others.png"},
	{Name: "NOTA", Symbol: "nota.png"},
}

// IsCandidate reports whether name is on the ballot. Matching is exact.
func IsCandidate(name string) bool {
	for _, c := range Candidates {
		if c.Name == name {
			return true
		}
	}
	return false
}
