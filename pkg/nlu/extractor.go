package nlu

import (
	"regexp"
	"strings"

	"finance-chatbot-be/pkg/store"
)

// Signals are the structured facts extracted from one free-text turn. Unset
// fields stay empty — the extractor never guesses.
type Signals struct {
	Nationality string
	Product     string
	SubProduct  string
	Topic       string
	IsFollowUp  bool
}

// turn is the working state threaded through the rule pipeline.
type turn struct {
	text     string // trimmed, case-folded
	previous store.Facts
	out      Signals
}

// rule is one prioritized classifier. Returning true stops the pipeline.
type rule struct {
	name  string
	apply func(*turn) bool
}

// Extract runs the prioritized rule pipeline over the raw text. Pure, total,
// never errors; priority and mutual exclusivity live in the rule ordering.
func Extract(text string, previous store.Facts) Signals {
	t := &turn{
		text:     strings.ToLower(strings.TrimSpace(text)),
		previous: previous,
	}
	for _, r := range rules {
		if r.apply(t) {
			break
		}
	}
	if t.out.IsFollowUp {
		carryForward(t)
	}
	return t.out
}

var rules = []rule{
	{name: "bare-nationality-follow-up", apply: bareNationalityFollowUp},
	{name: "follow-up-phrase", apply: followUpPhrase},
	{name: "nationality", apply: nationality},
	{name: "negative-guards", apply: negativeGuards},
	{name: "corporate-sub-product", apply: corporateSubProduct},
	{name: "coarse-product", apply: coarseProduct},
}

var (
	bareNationalityRe = regexp.MustCompile(`^(qataris?|expats?|expatriates?)\??$`)

	followUpRe = regexp.MustCompile(`what about|how about|is (this|it|that) for|what if i('m| am)|and (for )?(qatari|expat)|^for (qatari|expat)`)

	// Nationality phrasings in strict priority order: explicit "for/about X"
	// beats first-person "I am X" beats a bare mention, so a rhetorical
	// "what about expats" is never read as a self-declaration.
	nationalityForRe   = regexp.MustCompile(`(?:for|about)\s+(?:an?\s+|the\s+)?(qatari|qatar national|expat|expatriate|resident|foreigner)`)
	nationalityFirstRe = regexp.MustCompile(`i\s*(?:'m|\s+am)\s+(?:an?\s+)?(qatari|qatar national|expat|expatriate|resident|foreigner)`)
	nationalityBareRe  = regexp.MustCompile(`qatari|qatar national|expat|expatriate|resident|foreigner`)

	// Phrases that must not be mistaken for a finance-product query.
	afterSalesRe  = regexp.MustCompile(`after[- ]?sales|liability certificate|lien release|replace (a )?cheque|vehicle export`)
	mobileAppRe   = regexp.MustCompile(`mobile app|download (the )?app|app store|google play|use (the )?app`)
	socialMediaRe = regexp.MustCompile(`facebook|instagram|twitter|linkedin|snapchat|tiktok|social media|whatsapp`)

	commoditiesRe = regexp.MustCompile(`commodit|metal finance`)
	goodsRe       = regexp.MustCompile(`goods finance|goods|import finance`)
	fleetRe       = regexp.MustCompile(`fleet|equipment financ|wholesale financ`)
	revolvingRe   = regexp.MustCompile(`revolving|credit limit`)

	vehicleRe   = regexp.MustCompile(`vehicle|car\b|auto\b|motorcycle`)
	personalRe  = regexp.MustCompile(`personal`)
	housingRe   = regexp.MustCompile(`housing|home\b|property|real estate|villa|apartment`)
	servicesRe  = regexp.MustCompile(`\bservices?\b`)
	corporateRe = regexp.MustCompile(`corporate|company|business`)
	marineRe    = regexp.MustCompile(`marine|boat|yacht`)
	travelRe    = regexp.MustCompile(`travel|umrah|holiday|vacation`)
)

// bareNationalityFollowUp handles turns that are nothing but a nationality
// word ("qataris?") — the short form of "what about Qataris?". The rest of
// the context is carried forward untouched.
func bareNationalityFollowUp(t *turn) bool {
	m := bareNationalityRe.FindString(t.text)
	if m == "" {
		return false
	}
	t.out.IsFollowUp = true
	t.out.Nationality = canonicalNationality(m)
	return true
}

func followUpPhrase(t *turn) bool {
	if followUpRe.MatchString(t.text) {
		t.out.IsFollowUp = true
	}
	return false
}

func nationality(t *turn) bool {
	for _, re := range []*regexp.Regexp{nationalityForRe, nationalityFirstRe, nationalityBareRe} {
		m := re.FindStringSubmatch(t.text)
		if m == nil {
			continue
		}
		word := m[0]
		if len(m) > 1 {
			word = m[1]
		}
		t.out.Nationality = canonicalNationality(word)
		return false
	}
	return false
}

// negativeGuards stops product detection for support/app/social-media asks.
func negativeGuards(t *turn) bool {
	return afterSalesRe.MatchString(t.text) ||
		mobileAppRe.MatchString(t.text) ||
		socialMediaRe.MatchString(t.text)
}

func corporateSubProduct(t *turn) bool {
	switch {
	case commoditiesRe.MatchString(t.text):
		t.out.SubProduct = store.SubProductCommodities
	case fleetRe.MatchString(t.text):
		t.out.SubProduct = store.SubProductFleetEquipment
	case revolvingRe.MatchString(t.text):
		t.out.SubProduct = store.SubProductRevolvingCredit
	case goodsRe.MatchString(t.text):
		t.out.SubProduct = store.SubProductGoods
	default:
		return false
	}
	t.out.Product = store.ProductCorporate
	return true
}

func coarseProduct(t *turn) bool {
	switch {
	case vehicleRe.MatchString(t.text):
		t.out.Product = store.ProductVehicle
	case personalRe.MatchString(t.text):
		t.out.Product = store.ProductPersonal
	case housingRe.MatchString(t.text):
		t.out.Product = store.ProductHousing
	case servicesRe.MatchString(t.text):
		t.out.Product = store.ProductServices
	case corporateRe.MatchString(t.text):
		t.out.Product = store.ProductCorporate
	case marineRe.MatchString(t.text):
		t.out.Product = store.ProductMarine
	case travelRe.MatchString(t.text):
		t.out.Product = store.ProductTravel
	}
	return true
}

// carryForward keeps the subject under discussion when the turn is only a
// pivot ("what about expats?"): product, sub-product and topic survive from
// the previous facts unless this turn replaced them.
func carryForward(t *turn) {
	if t.out.Product == "" {
		t.out.Product = t.previous.Product
	}
	if t.out.SubProduct == "" {
		t.out.SubProduct = t.previous.SubProduct
	}
	if t.out.Topic == "" {
		t.out.Topic = t.previous.Topic
	}
}

func canonicalNationality(word string) string {
	if strings.HasPrefix(strings.TrimSpace(word), "qatar") {
		return store.NationalityQatari
	}
	return store.NationalityExpat
}
