package geo

import (
	"strings"

	"github.com/dimanh55/tourenplaner-backend-sub001/internal/domain"
)

// cityEntry is one StaticGeoTables row: a curated point plus the canonical
// spelling to report back to callers.
type cityEntry struct {
	Point         domain.GeoPoint
	CanonicalName string
}

// postalAnchor is one postal-code-first-digit row.
type postalAnchor struct {
	Point      domain.GeoPoint
	RegionName string
}

// StaticTables is the constant reference data: ~60 German
// cities above 100k population, keyed by a normalized (lowercased,
// variant-collapsed) city name, plus a 10-entry postal-code-first-digit
// anchor table. Both maps are built once in init and never mutated
// afterward.
type StaticTables struct {
	cities  map[string]cityEntry
	postal  map[byte]postalAnchor
	aliases map[string]string // variant spelling -> canonical lookup key
}

// cityVariants collapses common alternate spellings onto the canonical
// lookup key used in baseCities (common variants collapsed — e.g.
// frankfurt <-> frankfurt am main).
var cityVariants = map[string]string{
	"frankfurt am main": "frankfurt",
	"ffm":               "frankfurt",
	"muenchen":          "münchen",
	"munchen":           "münchen",
	"munich":            "münchen",
	"koeln":             "köln",
	"cologne":           "köln",
	"nuernberg":         "nürnberg",
	"nurnberg":          "nürnberg",
	"duesseldorf":       "düsseldorf",
	"dusseldorf":        "düsseldorf",
}

// baseCities covers all German cities above ~100k population. Coordinates
// are city-center approximations.
var baseCities = map[string]cityEntry{
	"berlin":             {domain.GeoPoint{Lat: 52.5200, Lng: 13.4050}, "Berlin"},
	"hamburg":            {domain.GeoPoint{Lat: 53.5511, Lng: 9.9937}, "Hamburg"},
	"münchen":            {domain.GeoPoint{Lat: 48.1351, Lng: 11.5820}, "München"},
	"köln":               {domain.GeoPoint{Lat: 50.9375, Lng: 6.9603}, "Köln"},
	"frankfurt":          {domain.GeoPoint{Lat: 50.1109, Lng: 8.6821}, "Frankfurt am Main"},
	"stuttgart":          {domain.GeoPoint{Lat: 48.7758, Lng: 9.1829}, "Stuttgart"},
	"düsseldorf":         {domain.GeoPoint{Lat: 51.2277, Lng: 6.7735}, "Düsseldorf"},
	"leipzig":            {domain.GeoPoint{Lat: 51.3397, Lng: 12.3731}, "Leipzig"},
	"dortmund":           {domain.GeoPoint{Lat: 51.5136, Lng: 7.4653}, "Dortmund"},
	"essen":              {domain.GeoPoint{Lat: 51.4556, Lng: 7.0116}, "Essen"},
	"bremen":             {domain.GeoPoint{Lat: 53.0793, Lng: 8.8017}, "Bremen"},
	"dresden":            {domain.GeoPoint{Lat: 51.0504, Lng: 13.7373}, "Dresden"},
	"hannover":           {domain.GeoPoint{Lat: 52.3759, Lng: 9.7320}, "Hannover"},
	"nürnberg":           {domain.GeoPoint{Lat: 49.4521, Lng: 11.0767}, "Nürnberg"},
	"duisburg":           {domain.GeoPoint{Lat: 51.4344, Lng: 6.7623}, "Duisburg"},
	"bochum":             {domain.GeoPoint{Lat: 51.4818, Lng: 7.2162}, "Bochum"},
	"wuppertal":          {domain.GeoPoint{Lat: 51.2562, Lng: 7.1508}, "Wuppertal"},
	"bielefeld":          {domain.GeoPoint{Lat: 52.0302, Lng: 8.5325}, "Bielefeld"},
	"bonn":               {domain.GeoPoint{Lat: 50.7374, Lng: 7.0982}, "Bonn"},
	"münster":            {domain.GeoPoint{Lat: 51.9607, Lng: 7.6261}, "Münster"},
	"karlsruhe":          {domain.GeoPoint{Lat: 49.0069, Lng: 8.4037}, "Karlsruhe"},
	"mannheim":           {domain.GeoPoint{Lat: 49.4875, Lng: 8.4660}, "Mannheim"},
	"augsburg":           {domain.GeoPoint{Lat: 48.3705, Lng: 10.8978}, "Augsburg"},
	"wiesbaden":          {domain.GeoPoint{Lat: 50.0782, Lng: 8.2398}, "Wiesbaden"},
	"gelsenkirchen":      {domain.GeoPoint{Lat: 51.5177, Lng: 7.0857}, "Gelsenkirchen"},
	"mönchengladbach":    {domain.GeoPoint{Lat: 51.1805, Lng: 6.4428}, "Mönchengladbach"},
	"braunschweig":       {domain.GeoPoint{Lat: 52.2689, Lng: 10.5268}, "Braunschweig"},
	"chemnitz":           {domain.GeoPoint{Lat: 50.8278, Lng: 12.9214}, "Chemnitz"},
	"kiel":               {domain.GeoPoint{Lat: 54.3233, Lng: 10.1228}, "Kiel"},
	"aachen":             {domain.GeoPoint{Lat: 50.7753, Lng: 6.0839}, "Aachen"},
	"halle":              {domain.GeoPoint{Lat: 51.4825, Lng: 11.9699}, "Halle (Saale)"},
	"magdeburg":          {domain.GeoPoint{Lat: 52.1205, Lng: 11.6276}, "Magdeburg"},
	"freiburg":           {domain.GeoPoint{Lat: 47.9990, Lng: 7.8421}, "Freiburg im Breisgau"},
	"krefeld":            {domain.GeoPoint{Lat: 51.3388, Lng: 6.5853}, "Krefeld"},
	"lübeck":             {domain.GeoPoint{Lat: 53.8655, Lng: 10.6866}, "Lübeck"},
	"oberhausen":         {domain.GeoPoint{Lat: 51.4963, Lng: 6.8638}, "Oberhausen"},
	"erfurt":             {domain.GeoPoint{Lat: 50.9848, Lng: 11.0299}, "Erfurt"},
	"mainz":              {domain.GeoPoint{Lat: 49.9929, Lng: 8.2473}, "Mainz"},
	"rostock":            {domain.GeoPoint{Lat: 54.0887, Lng: 12.1408}, "Rostock"},
	"kassel":             {domain.GeoPoint{Lat: 51.3127, Lng: 9.4797}, "Kassel"},
	"hagen":              {domain.GeoPoint{Lat: 51.3670, Lng: 7.4633}, "Hagen"},
	"saarbrücken":        {domain.GeoPoint{Lat: 49.2401, Lng: 6.9969}, "Saarbrücken"},
	"hamm":               {domain.GeoPoint{Lat: 51.6806, Lng: 7.8142}, "Hamm"},
	"mülheim":            {domain.GeoPoint{Lat: 51.4278, Lng: 6.8804}, "Mülheim an der Ruhr"},
	"ludwigshafen":       {domain.GeoPoint{Lat: 49.4741, Lng: 8.4350}, "Ludwigshafen am Rhein"},
	"leverkusen":         {domain.GeoPoint{Lat: 51.0459, Lng: 6.9891}, "Leverkusen"},
	"oldenburg":          {domain.GeoPoint{Lat: 53.1435, Lng: 8.2146}, "Oldenburg"},
	"osnabrück":          {domain.GeoPoint{Lat: 52.2799, Lng: 8.0472}, "Osnabrück"},
	"solingen":           {domain.GeoPoint{Lat: 51.1652, Lng: 7.0671}, "Solingen"},
	"heidelberg":         {domain.GeoPoint{Lat: 49.3988, Lng: 8.6724}, "Heidelberg"},
	"herne":              {domain.GeoPoint{Lat: 51.5388, Lng: 7.2254}, "Herne"},
	"neuss":              {domain.GeoPoint{Lat: 51.1983, Lng: 6.6956}, "Neuss"},
	"darmstadt":          {domain.GeoPoint{Lat: 49.8728, Lng: 8.6512}, "Darmstadt"},
	"paderborn":          {domain.GeoPoint{Lat: 51.7189, Lng: 8.7575}, "Paderborn"},
	"regensburg":         {domain.GeoPoint{Lat: 49.0134, Lng: 12.1016}, "Regensburg"},
	"ingolstadt":         {domain.GeoPoint{Lat: 48.7665, Lng: 11.4257}, "Ingolstadt"},
	"würzburg":           {domain.GeoPoint{Lat: 49.7913, Lng: 9.9534}, "Würzburg"},
	"wolfsburg":          {domain.GeoPoint{Lat: 52.4227, Lng: 10.7865}, "Wolfsburg"},
	"offenbach":          {domain.GeoPoint{Lat: 50.0955, Lng: 8.7761}, "Offenbach am Main"},
	"ulm":                {domain.GeoPoint{Lat: 48.4011, Lng: 9.9876}, "Ulm"},
	"heilbronn":          {domain.GeoPoint{Lat: 49.1427, Lng: 9.2109}, "Heilbronn"},
	"pforzheim":          {domain.GeoPoint{Lat: 48.8922, Lng: 8.6946}, "Pforzheim"},
	"göttingen":          {domain.GeoPoint{Lat: 51.5412, Lng: 9.9158}, "Göttingen"},
}

// basePostalAnchors is the 10-entry first-digit -> regional anchor table.
var basePostalAnchors = map[byte]postalAnchor{
	'0': {domain.GeoPoint{Lat: 51.05, Lng: 13.74}, "Sachsen/Thüringen"},
	'1': {domain.GeoPoint{Lat: 52.52, Lng: 13.40}, "Berlin/Brandenburg"},
	'2': {domain.GeoPoint{Lat: 53.55, Lng: 10.00}, "Hamburg/Schleswig-Holstein"},
	'3': {domain.GeoPoint{Lat: 52.38, Lng: 9.73}, "Niedersachsen/Hannover"},
	'4': {domain.GeoPoint{Lat: 51.23, Lng: 6.78}, "Nordrhein-Westfalen (West)"},
	'5': {domain.GeoPoint{Lat: 50.94, Lng: 6.96}, "Nordrhein-Westfalen (Köln/Bonn)"},
	'6': {domain.GeoPoint{Lat: 50.11, Lng: 8.68}, "Hessen"},
	'7': {domain.GeoPoint{Lat: 48.78, Lng: 9.18}, "Baden-Württemberg"},
	'8': {domain.GeoPoint{Lat: 48.14, Lng: 11.58}, "Bayern (Süd)"},
	'9': {domain.GeoPoint{Lat: 49.45, Lng: 11.08}, "Bayern (Nord)"},
}

// NewStaticTables builds the constant lookup tables once; the returned
// value is never mutated.
func NewStaticTables() *StaticTables {
	return &StaticTables{
		cities:  baseCities,
		postal:  basePostalAnchors,
		aliases: cityVariants,
	}
}

// normalizeKey lowercases and resolves a city name through the alias table.
func (t *StaticTables) normalizeKey(city string) string {
	key := strings.ToLower(strings.TrimSpace(city))
	if canonical, ok := t.aliases[key]; ok {
		return canonical
	}
	return key
}

// Lookup returns the exact city table entry for city, if any.
func (t *StaticTables) Lookup(city string) (domain.GeoPoint, string, bool) {
	e, ok := t.cities[t.normalizeKey(city)]
	if !ok {
		return domain.GeoPoint{}, "", false
	}
	return e.Point, e.CanonicalName, true
}

// Keys returns every normalized city key, for the similar-city Levenshtein
// scan.
func (t *StaticTables) Keys() []string {
	keys := make([]string, 0, len(t.cities))
	for k := range t.cities {
		keys = append(keys, k)
	}
	return keys
}

// EntryFor returns the city entry for an already-normalized key.
func (t *StaticTables) EntryFor(key string) (domain.GeoPoint, string, bool) {
	e, ok := t.cities[key]
	if !ok {
		return domain.GeoPoint{}, "", false
	}
	return e.Point, e.CanonicalName, true
}

// PostalAnchor returns the first-digit anchor for a 5-digit postal code
// ok is false if postalCode isn't exactly 5 digits.
func (t *StaticTables) PostalAnchor(postalCode string) (domain.GeoPoint, string, bool) {
	if len(postalCode) != 5 {
		return domain.GeoPoint{}, "", false
	}
	a, ok := t.postal[postalCode[0]]
	if !ok {
		return domain.GeoPoint{}, "", false
	}
	return a.Point, a.RegionName, true
}

// CountryCentroid is the final, always-succeeding tier-7 fallback.
var CountryCentroid = domain.GeoPoint{Lat: 51.1657, Lng: 10.4515}
