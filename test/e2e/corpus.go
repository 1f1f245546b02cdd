// Package e2e runs the full knowledge pipeline end to end: files on disk are
// extracted, chunked, indexed, retrieved, answered, and served over HTTP.
package e2e

import "strings"

// KnowledgeFile is one voter-education document of the corpus. Name is the
// file stem; the extension is chosen when the file is written.
type KnowledgeFile struct {
	Name    string
	Title   string
	Content string
}

// QueryTestCase is a question and the file whose passages must be cited in the answer.
type QueryTestCase struct {
	Query        string
	ExpectedFile string
	Description  string
}

// Corpus holds the knowledge files and the questions asked against them.
type Corpus struct {
	Files     []KnowledgeFile
	TestCases []QueryTestCase
}

// BuildCorpus returns a corpus where each file carries a signature phrase
// that no other file uses, so a question built from it must cite that file.
func BuildCorpus() *Corpus {
	topics := []struct {
		name      string
		title     string
		signature string
		body      string
	}{
		{"form6", "New voter registration", "inclusion of name for first time electors",
			"Citizens who turn eighteen on the qualifying date apply online or with the Booth Level Officer. Attach proof of age and proof of residence."},
		{"form6a", "Overseas electors", "overseas elector passport holder abroad",
			"Indian citizens living abroad who have not acquired foreign citizenship may enrol at the address given in their passport."},
		{"form7", "Objection and deletion", "objection against proposed deletion shifted deceased",
			"An elector may object to an entry or seek removal of a name that belongs to a person who has shifted or died."},
		{"form8", "Correction of entries", "correction replacement shifting within constituency",
			"Use the correction request to fix spelling, photograph or date of birth, to replace a lost card, or to record a move inside the same constituency."},
		{"epic", "Elector photo identity card", "laminated photo identity card EPIC number",
			"The card carries a ten character number. Keep it safe and never share it on social media."},
		{"nota", "None of the above", "NOTA button rejection of all candidates",
			"The last button on the ballot unit lets a voter reject every candidate while keeping the vote secret."},
		{"evm", "Electronic voting machine", "ballot unit control unit beep",
			"Press the blue button against the chosen symbol and wait for the beep and the red light."},
		{"vvpat", "Voter verifiable paper audit trail", "paper slip visible seven seconds",
			"After voting, a printed slip with the serial number, name and symbol is visible through the window before it drops into the sealed box."},
		{"mcc", "Model Code of Conduct", "code of conduct announcement schedule",
			"From the announcement of the schedule, governments may not announce new schemes and parties must follow conduct rules."},
		{"postal", "Postal ballot", "postal ballot service voters absentee",
			"Service voters, voters on election duty and notified absentee categories may vote by post after applying in time."},
		{"ink", "Indelible ink", "indelible ink left forefinger",
			"The polling officer marks the finger before the voter signs the register. The mark lasts for several days."},
		{"helpline", "Voter helpline", "helpline 1950 toll free",
			"Call the toll free number for help with registration, polling station details and complaints."},
		{"cvigil", "Reporting violations", "cVIGIL geotagged photo complaint",
			"Citizens may report violations with a geotagged photograph or video. A flying squad responds within one hundred minutes."},
		{"pwd", "Accessible voting", "wheelchair ramp braille assistance",
			"Polling stations provide ramps, wheelchairs, braille signage on the ballot unit and priority entry for voters with disabilities."},
		{"altid", "Alternative identity documents", "alternative photo documents passport driving licence",
			"Voters without the photo card may show a passport, driving licence, or bank passbook with photograph at the polling station."},
		{"blo", "Booth Level Officer", "booth level officer door to door verification",
			"The officer verifies electors house to house, collects applications and helps residents find their part number."},
	}

	c := &Corpus{}
	for _, tp := range topics {
		c.Files = append(c.Files, KnowledgeFile{
			Name:    tp.name,
			Title:   tp.title,
			Content: tp.title + ". " + tp.signature + ". " + tp.body + " Remember: " + tp.signature + ".",
		})
		c.TestCases = append(c.TestCases, QueryTestCase{
			Query:        "Tell me about " + tp.signature,
			ExpectedFile: tp.name,
			Description:  strings.ToLower(tp.title),
		})
	}
	return c
}
