package catalog

// Vertical describes one marketplace category
type Vertical struct {
	Slug        string
	Name        string
	Description string
	Currency    string
	// SubtitleKeys are the attributes shown under a card title, in order
	SubtitleKeys []string
	// PriceSuffix is shown after the price on cards (e.g. "/ month")
	PriceSuffix string

	minPrice int64
	maxPrice int64
	makes    []string
	models   []string
	attrs    []attrSpec
}

type attrSpec struct {
	key    string
	values []string
}

var verticals = []Vertical{
	{
		Slug:         "boat",
		Name:         "Boats",
		Description:  "Motorboats, sailboats and daycruisers",
		Currency:     "NOK",
		SubtitleKeys: []string{"year", "length"},
		minPrice:     40_000,
		maxPrice:     3_500_000,
		makes:        []string{"Bayliner", "Askeladden", "Windy", "Nimbus", "Bavaria", "Hallberg-Rassy", "Quicksilver"},
		models:       []string{"2855", "C61", "Weekender", "Cruiser 34", "405 Coupe", "Activ 675", "Sport 22"},
		attrs: []attrSpec{
			{key: "year", values: []string{"1998", "2004", "2009", "2013", "2017", "2020", "2023"}},
			{key: "length", values: []string{"17 ft", "21 ft", "25 ft", "28 ft", "34 ft", "41 ft"}},
			{key: "engine", values: []string{"Volvo Penta D4", "Mercury 150", "Yamaha F115", "Suzuki DF90"}},
		},
	},
	{
		Slug:         "car",
		Name:         "Cars",
		Description:  "New and used cars",
		Currency:     "NOK",
		SubtitleKeys: []string{"year", "mileage"},
		minPrice:     25_000,
		maxPrice:     1_200_000,
		makes:        []string{"Tesla", "Volkswagen", "Toyota", "Volvo", "BMW", "Skoda", "Audi"},
		models:       []string{"Model 3", "ID.4", "RAV4", "XC60", "i4", "Octavia", "Q4 e-tron"},
		attrs: []attrSpec{
			{key: "year", values: []string{"2012", "2015", "2018", "2020", "2022", "2024"}},
			{key: "mileage", values: []string{"12 000 km", "45 000 km", "88 000 km", "130 000 km", "210 000 km"}},
			{key: "fuel", values: []string{"Electric", "Diesel", "Petrol", "Hybrid"}},
		},
	},
	{
		Slug:         "motorcycle",
		Name:         "Motorcycles",
		Description:  "Motorcycles, scooters and mopeds",
		Currency:     "NOK",
		SubtitleKeys: []string{"year", "engine"},
		minPrice:     8_000,
		maxPrice:     350_000,
		makes:        []string{"Yamaha", "Honda", "Kawasaki", "Ducati", "Harley-Davidson", "KTM", "Triumph"},
		models:       []string{"MT-07", "CB650R", "Z900", "Monster", "Sportster S", "390 Duke", "Street Triple"},
		attrs: []attrSpec{
			{key: "year", values: []string{"2008", "2014", "2017", "2019", "2021", "2023"}},
			{key: "engine", values: []string{"125 cc", "390 cc", "689 cc", "765 cc", "948 cc", "1252 cc"}},
		},
	},
	{
		Slug:         "real-estate",
		Name:         "Real estate",
		Description:  "Homes, apartments and cabins for sale",
		Currency:     "NOK",
		SubtitleKeys: []string{"type", "area"},
		minPrice:     900_000,
		maxPrice:     14_000_000,
		makes:        []string{"Bright", "Spacious", "Renovated", "Charming", "Modern", "Central"},
		models:       []string{"apartment", "townhouse", "detached house", "cabin", "penthouse"},
		attrs: []attrSpec{
			{key: "type", values: []string{"Apartment", "Townhouse", "Detached", "Cabin"}},
			{key: "area", values: []string{"38 m²", "54 m²", "72 m²", "96 m²", "140 m²", "210 m²"}},
			{key: "bedrooms", values: []string{"1", "2", "3", "4", "5"}},
		},
	},
	{
		Slug:         "travel",
		Name:         "Travel",
		Description:  "Package trips, flights and hotels",
		Currency:     "NOK",
		SubtitleKeys: []string{"duration", "departure"},
		minPrice:     1_500,
		maxPrice:     45_000,
		makes:        []string{"Week in", "Weekend in", "Family trip to", "Last minute to", "Cruise to"},
		models:       []string{"Gran Canaria", "Rome", "Lofoten", "Bangkok", "Crete", "Reykjavik", "Lisbon"},
		attrs: []attrSpec{
			{key: "duration", values: []string{"3 days", "5 days", "7 days", "14 days"}},
			{key: "departure", values: []string{"Oslo", "Bergen", "Trondheim", "Stavanger"}},
		},
	},
	{
		Slug:         "job",
		Name:         "Jobs",
		Description:  "Open positions across Norway",
		Currency:     "NOK",
		SubtitleKeys: []string{"employer", "extent"},
		PriceSuffix:  "/ year",
		minPrice:     450_000,
		maxPrice:     1_400_000,
		makes:        []string{"Senior", "Junior", "Lead", "Part-time", ""},
		models:       []string{"Backend Developer", "Nurse", "Electrician", "Accountant", "Teacher", "Chef", "Product Designer"},
		attrs: []attrSpec{
			{key: "employer", values: []string{"Equinor", "Telenor", "Oslo kommune", "DNB", "Helse Bergen", "Kiwi"}},
			{key: "extent", values: []string{"Full-time", "Part-time", "Temporary"}},
		},
	},
}

// Verticals returns all verticals in navigation order
func Verticals() []Vertical {
	out := make([]Vertical, len(verticals))
	copy(out, verticals)
	return out
}

// Lookup finds a vertical by slug
func Lookup(slug string) (Vertical, bool) {
	for _, v := range verticals {
		if v.Slug == slug {
			return v, true
		}
	}
	return Vertical{}, false
}

// Slugs returns the slugs of all verticals
func Slugs() []string {
	out := make([]string, len(verticals))
	for i, v := range verticals {
		out[i] = v.Slug
	}
	return out
}
