package config

// crimeDateFormat is the timestamp format of the Chicago crimes export.
const crimeDateFormat = "%m/%d/%Y %I:%M:%S %p"

// Builtin returns the default domain registry. Each call returns a fresh
// copy.
func Builtin() []Domain {
	return []Domain{
		{
			Name: "crimes",
			Sources: []Source{{
				File:  "crimes-2001-to-present.csv",
				Table: "crime_data",
				Columns: []Column{
					{Canonical: "id", Synonyms: []string{"ID"}},
					{Canonical: "case_number", Synonyms: []string{"Case Number"}},
					{Canonical: "date", Synonyms: []string{"Date"}},
					{Canonical: "block", Synonyms: []string{"Block"}},
					{Canonical: "iucr", Synonyms: []string{"IUCR"}},
					{Canonical: "primary_type", Synonyms: []string{"Primary Type"}},
					{Canonical: "description", Synonyms: []string{"Description"}},
					{Canonical: "location_description", Synonyms: []string{"Location Description"}},
					{Canonical: "arrest", Synonyms: []string{"Arrest"}},
					{Canonical: "domestic", Synonyms: []string{"Domestic"}},
					{Canonical: "beat", Synonyms: []string{"Beat"}},
					{Canonical: "district", Synonyms: []string{"District"}},
					{Canonical: "ward", Synonyms: []string{"Ward"}},
					{Canonical: "community_area", Synonyms: []string{"Community Area"}},
					{Canonical: "fbi_code", Synonyms: []string{"FBI Code"}},
					{Canonical: "x_coordinate", Synonyms: []string{"X Coordinate"}},
					{Canonical: "y_coordinate", Synonyms: []string{"Y Coordinate"}},
					{Canonical: "year", Synonyms: []string{"Year"}},
					{Canonical: "updated_on", Synonyms: []string{"Updated On"}},
					{Canonical: "latitude", Synonyms: []string{"Latitude"}},
					{Canonical: "longitude", Synonyms: []string{"Longitude"}},
					{Canonical: "location", Synonyms: []string{"Location"}},
				},
				Dates: Dates{
					Columns: []string{"date", "updated_on"},
					Mode:    "strict",
					Format:  crimeDateFormat,
				},
			}},
		},
		{
			Name: "happiness",
			Sources: []Source{{
				Files: []string{"2015.csv", "2016.csv", "2017.csv", "2018.csv", "2019.csv"},
				Table: "happiness_{year}",
				Columns: []Column{
					{Canonical: "country", Synonyms: []string{"Country", "Country or region"}},
					{Canonical: "region", Synonyms: []string{"Region"}},
					{Canonical: "happiness_rank", Synonyms: []string{"Happiness Rank", "Happiness.Rank", "Overall rank"}},
					{Canonical: "happiness_score", Synonyms: []string{"Happiness Score", "Happiness.Score", "Score"}},
					{Canonical: "lower_confidence_interval", Synonyms: []string{"Lower Confidence Interval"}},
					{Canonical: "upper_confidence_interval", Synonyms: []string{"Upper Confidence Interval"}},
					{Canonical: "whisker_high", Synonyms: []string{"Whisker.high"}},
					{Canonical: "whisker_low", Synonyms: []string{"Whisker.low"}},
					{Canonical: "standard_error", Synonyms: []string{"Standard Error"}},
					{Canonical: "economy", Synonyms: []string{"Economy (GDP per Capita)", "Economy..GDP.per.Capita.", "GDP per capita"}},
					{Canonical: "family", Synonyms: []string{"Family", "Social support"}},
					{Canonical: "health", Synonyms: []string{"Health (Life Expectancy)", "Health..Life.Expectancy.", "Healthy life expectancy"}},
					{Canonical: "freedom", Synonyms: []string{"Freedom", "Freedom to make life choices"}},
					{Canonical: "trust", Synonyms: []string{"Trust (Government Corruption)", "Trust..Government.Corruption.", "Perceptions of corruption"}},
					{Canonical: "generosity", Synonyms: []string{"Generosity"}},
					{Canonical: "dystopia_residual", Synonyms: []string{"Dystopia Residual", "Dystopia.Residual"}},
				},
			}},
		},
		{
			Name: "hospitality",
			Sources: []Source{
				{File: "dim_date.csv", Table: "dim_date", Dates: lenient("date")},
				{File: "dim_hotels.csv", Table: "dim_hotels"},
				{File: "dim_rooms.csv", Table: "dim_rooms"},
				{File: "fact_aggregated_bookings.csv", Table: "fact_aggregated_bookings", Dates: lenient("check_in_date")},
				{File: "fact_bookings.csv", Table: "fact_bookings", Dates: lenient("check_in_date", "booking_date", "check_out_date")},
			},
		},
	}
}

func lenient(cols ...string) Dates {
	return Dates{Columns: cols, Mode: "lenient"}
}
