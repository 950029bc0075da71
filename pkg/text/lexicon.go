package text

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var honorifics = toSet(
	"mr", "mrs", "ms", "dr", "prof", "professor", "sir", "lady",
	"president", "chancellor", "minister", "senator", "judge",
)

var firstNames = toSet(
	"james", "john", "robert", "michael", "william", "david", "richard",
	"joseph", "thomas", "charles", "christopher", "daniel", "matthew",
	"anthony", "mark", "donald", "steven", "paul", "andrew", "joshua",
	"kenneth", "kevin", "brian", "george", "edward", "ronald", "ron",
	"timothy", "tim", "jason", "jeffrey", "jeff", "ryan", "jacob", "gary",
	"nicholas", "eric", "jonathan", "stephen", "steve", "larry", "justin",
	"scott", "brandon", "benjamin", "samuel", "sam", "frank", "gregory",
	"raymond", "alexander", "patrick", "jack", "dennis", "jerry", "tyler",
	"peter", "adam", "harold", "henry", "carl", "arthur", "roger", "linus",
	"bill", "tom", "bob", "elon", "sundar", "satya", "sergey",
	"mary", "patricia", "jennifer", "linda", "elizabeth", "barbara",
	"susan", "jessica", "sarah", "karen", "nancy", "lisa", "margaret",
	"betty", "sandra", "ashley", "dorothy", "kimberly", "emily", "donna",
	"michelle", "carol", "amanda", "melissa", "deborah", "stephanie",
	"rebecca", "laura", "sharon", "cynthia", "kathleen", "amy", "angela",
	"anna", "ruth", "alice", "jane", "grace", "marie", "julia", "claire",
)

var orgSuffixes = toSet(
	"inc", "corp", "corporation", "ltd", "llc", "gmbh", "ag", "plc",
	"company", "co", "group", "holdings", "ventures", "partners",
	"labs", "laboratories", "institute", "university", "college",
	"academy", "school", "agency", "bureau", "bank", "foundation",
	"association", "committee", "council", "ministry", "department",
	"authority", "commission", "organization", "organisation", "union",
	"systems", "technologies", "solutions", "software", "networks",
	"industries", "enterprises", "consulting", "media", "press",
)

var knownOrganizations = toSet(
	"apple", "google", "microsoft", "amazon", "facebook", "meta", "ibm",
	"intel", "oracle", "cisco", "netflix", "twitter", "tesla", "samsung",
	"sony", "siemens", "bosch", "nokia", "mozilla", "openai", "nvidia",
	"nasa", "fbi", "cia", "nsa", "gchq", "bsi", "enisa", "interpol",
	"europol", "un", "eu", "nato", "who", "unesco", "nist", "iso",
	"ietf", "ieee", "mitre", "owasp", "w3c",
)

var knownPlaces = toSet(
	"germany", "france", "england", "spain", "italy", "austria",
	"switzerland", "netherlands", "belgium", "poland", "sweden", "norway",
	"denmark", "finland", "russia", "china", "japan", "india", "brazil",
	"canada", "mexico", "australia", "america", "usa", "uk", "ireland",
	"scotland", "europe", "asia", "africa", "london", "paris", "berlin",
	"munich", "hamburg", "frankfurt", "cologne", "oldenburg", "bremen",
	"vienna", "zurich", "amsterdam", "brussels", "madrid", "rome",
	"moscow", "beijing", "shanghai", "tokyo", "seoul", "sydney",
	"washington", "boston", "seattle", "chicago", "dallas", "austin",
	"california", "texas", "florida", "cupertino", "redmond",
	"silicon valley", "new york", "san francisco", "los angeles",
)

var geoSuffixes = toSet(
	"city", "island", "islands", "river", "mountain", "mountains",
	"valley", "republic", "kingdom", "states", "county", "province",
	"bay", "lake", "coast", "peninsula", "district",
)

var locationPrepositions = toSet("in", "at", "from", "near")

// nounStopWords filters the common-noun concept extraction. This is the
// extraction-side stop list; the retrieval keyword extractor keeps its own.
var nounStopWords = toSet(
	"this", "that", "these", "those", "there", "their", "them", "they",
	"then", "than", "with", "without", "within", "from", "into", "onto",
	"over", "under", "about", "after", "before", "between", "through",
	"during", "against", "above", "below", "because", "while", "where",
	"when", "which", "what", "whose", "will", "would", "could", "should",
	"shall", "might", "must", "have", "having", "been", "being", "were",
	"does", "doing", "done", "also", "just", "only", "very", "much",
	"many", "more", "most", "some", "such", "other", "others", "another",
	"each", "every", "both", "several", "same", "different", "however",
	"therefore", "thus", "hence", "although", "though", "since", "until",
	"unless", "whether", "either", "neither", "well", "here", "even",
	"still", "example", "etc", "like", "make", "made", "making", "take",
	"taken", "taking", "used", "using", "use", "way", "ways", "thing",
	"things", "something", "anything", "everything", "nothing", "someone",
	"anyone", "everyone", "part", "parts", "kind", "kinds", "type",
	"types", "lot", "lots", "bit", "bits", "year", "years", "time",
	"times", "day", "days",
)
