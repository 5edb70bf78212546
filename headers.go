package unpoly

// Request headers sent by the Unpoly frontend.
//
// See https://unpoly.com/up.protocol
const (
	HeaderVersion     = "X-Up-Version"
	HeaderContext     = "X-Up-Context"
	HeaderFailContext = "X-Up-Fail-Context"
	HeaderMode        = "X-Up-Mode"
	HeaderFailMode    = "X-Up-Fail-Mode"
	HeaderTarget      = "X-Up-Target"
	HeaderFailTarget  = "X-Up-Fail-Target"
	HeaderValidate    = "X-Up-Validate"
)

// Response headers understood by the Unpoly frontend.
// X-Up-Context and X-Up-Target are used in both directions.
const (
	HeaderTitle        = "X-Up-Title"
	HeaderLocation     = "X-Up-Location"
	HeaderMethod       = "X-Up-Method"
	HeaderAcceptLayer  = "X-Up-Accept-Layer"
	HeaderDismissLayer = "X-Up-Dismiss-Layer"
	HeaderEvents       = "X-Up-Events"
	HeaderEvictCache   = "X-Up-Evict-Cache"
	HeaderExpireCache  = "X-Up-Expire-Cache"
)

// HeaderVary is the standard Vary response header. It lists every X-Up
// request header that influenced the response, so caches key on them.
const HeaderVary = "Vary"
