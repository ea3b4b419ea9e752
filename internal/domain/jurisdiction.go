package domain

// Jurisdiction is a tracked legislative body, identified by a stable
// numeric id and a 2-letter code.
type Jurisdiction struct {
	ID   int
	Code string
	Name string
}

// jurisdictions is the static upstream jurisdiction table, loaded once at
// process start. Ids follow the upstream catalog's alphabetical numbering.
var jurisdictions = map[int]Jurisdiction{
	1:  {1, "AL", "Alabama"},
	2:  {2, "AK", "Alaska"},
	3:  {3, "AZ", "Arizona"},
	4:  {4, "AR", "Arkansas"},
	5:  {5, "CA", "California"},
	6:  {6, "CO", "Colorado"},
	7:  {7, "CT", "Connecticut"},
	8:  {8, "DE", "Delaware"},
	9:  {9, "FL", "Florida"},
	10: {10, "GA", "Georgia"},
	11: {11, "HI", "Hawaii"},
	12: {12, "ID", "Idaho"},
	13: {13, "IL", "Illinois"},
	14: {14, "IN", "Indiana"},
	15: {15, "IA", "Iowa"},
	16: {16, "KS", "Kansas"},
	17: {17, "KY", "Kentucky"},
	18: {18, "LA", "Louisiana"},
	19: {19, "ME", "Maine"},
	20: {20, "MD", "Maryland"},
	21: {21, "MA", "Massachusetts"},
	22: {22, "MI", "Michigan"},
	23: {23, "MN", "Minnesota"},
	24: {24, "MS", "Mississippi"},
	25: {25, "MO", "Missouri"},
	26: {26, "MT", "Montana"},
	27: {27, "NE", "Nebraska"},
	28: {28, "NV", "Nevada"},
	29: {29, "NH", "New Hampshire"},
	30: {30, "NJ", "New Jersey"},
	31: {31, "NM", "New Mexico"},
	32: {32, "NY", "New York"},
	33: {33, "NC", "North Carolina"},
	34: {34, "ND", "North Dakota"},
	35: {35, "OH", "Ohio"},
	36: {36, "OK", "Oklahoma"},
	37: {37, "OR", "Oregon"},
	38: {38, "PA", "Pennsylvania"},
	39: {39, "RI", "Rhode Island"},
	40: {40, "SC", "South Carolina"},
	41: {41, "SD", "South Dakota"},
	42: {42, "TN", "Tennessee"},
	43: {43, "TX", "Texas"},
	44: {44, "UT", "Utah"},
	45: {45, "VT", "Vermont"},
	46: {46, "VA", "Virginia"},
	47: {47, "WA", "Washington"},
	48: {48, "WV", "West Virginia"},
	49: {49, "WI", "Wisconsin"},
	50: {50, "WY", "Wyoming"},
	51: {51, "DC", "Washington D.C."},
	52: {52, "US", "US Congress"},
}

// jurisdictionsByCode is the reverse index of the jurisdiction table.
var jurisdictionsByCode = func() map[string]Jurisdiction {
	m := make(map[string]Jurisdiction, len(jurisdictions))
	for _, j := range jurisdictions {
		m[j.Code] = j
	}
	return m
}()

// JurisdictionByID looks up a jurisdiction by its numeric id.
func JurisdictionByID(id int) (Jurisdiction, bool) {
	j, ok := jurisdictions[id]
	return j, ok
}

// JurisdictionByCode looks up a jurisdiction by its 2-letter code.
func JurisdictionByCode(code string) (Jurisdiction, bool) {
	j, ok := jurisdictionsByCode[code]
	return j, ok
}
