package crs

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrUnidentified reports a definition naming no recognizable system.
	ErrUnidentified = errors.New("coordinate reference system not identified")
	// ErrUnsupported reports an identified system with no transform to WGS 84.
	ErrUnsupported = errors.New("unsupported coordinate reference system")
)

const (
	codeWGS84      = 4326
	codeRGF93      = 4171
	codeETRS89     = 4258
	codeNAD83      = 4269
	codeNTF        = 4275
	codeED50       = 4230
	codeNAD27      = 4267
	codeWebMerc    = 3857
	codeLambert93  = 2154
	codeLambertII  = 27572
	ccFirst        = 3942
	ccLast         = 3950
	ccLatOffset    = 3900
	ed50UTMOffset  = 23000
	ed50UTMFirst   = 28
	ed50UTMLast    = 38
	utmZoneOffsetN = 32600
	utmZoneOffsetS = 32700
)

// utmFamily is a run of EPSG codes holding the UTM zones of one datum that
// coincides with WGS 84 at map scale.
type utmFamily struct {
	datum       string
	offset      int
	first, last int
	northern    bool
}

var utmFamilies = []utmFamily{
	{datum: "WGS 84", offset: utmZoneOffsetN, first: 1, last: 60, northern: true},
	{datum: "WGS 84", offset: utmZoneOffsetS, first: 1, last: 60},
	{datum: "ETRS89", offset: 25800, first: 28, last: 38, northern: true},
	{datum: "NAD83", offset: 26900, first: 1, last: 23, northern: true},
}

// CRS is a coordinate reference system, identified by EPSG code when one is
// known.
type CRS struct {
	Code int
	Name string

	def *definition
}

// WGS84 is the target system of every reprojection.
var WGS84 = CRS{Code: codeWGS84, Name: "WGS 84"}

func (c CRS) String() string {
	if c.Code != 0 {
		return "EPSG:" + strconv.Itoa(c.Code)
	}
	if c.Name != "" {
		return c.Name
	}
	return "unknown"
}

// IsWGS84 reports whether coordinates in c are already WGS 84 lon/lat.
func (c CRS) IsWGS84() bool {
	return c.Code == codeWGS84
}

// Supported reports whether c can be reprojected to WGS 84.
func (c CRS) Supported() bool {
	_, err := ToWGS84(c)
	return err == nil
}

// UTMZone returns the zone number and hemisphere of a UTM system on WGS 84,
// ETRS89 or NAD83.
func (c CRS) UTMZone() (zone int, northern bool, ok bool) {
	if f, ok := utmFamilyOf(c.Code); ok {
		return c.Code - f.offset, f.northern, true
	}
	return 0, false, false
}

func utmFamilyOf(code int) (utmFamily, bool) {
	for _, f := range utmFamilies {
		if code >= f.offset+f.first && code <= f.offset+f.last {
			return f, true
		}
	}
	return utmFamily{}, false
}

// aliases fold legacy and vendor codes onto their EPSG equivalent.
var aliases = map[int]int{
	900913: codeWebMerc,
	102100: codeWebMerc,
	102113: codeWebMerc,
	3785:   codeWebMerc,
	104108: codeRGF93,
}

// knownNames maps normalized ESRI and OGC names to EPSG codes.
var knownNames = map[string]int{
	"wgs84":                                  codeWGS84,
	"wgs_84":                                 codeWGS84,
	"wgs_1984":                               codeWGS84,
	"gcs_wgs_1984":                           codeWGS84,
	"rgf93":                                  codeRGF93,
	"rgf93_v1":                               codeRGF93,
	"gcs_rgf_1993":                           codeRGF93,
	"etrs89":                                 codeETRS89,
	"gcs_etrs_1989":                          codeETRS89,
	"nad83":                                  codeNAD83,
	"gcs_north_american_1983":                codeNAD83,
	"ntf":                                    codeNTF,
	"gcs_ntf":                                codeNTF,
	"ed50":                                   codeED50,
	"gcs_european_1950":                      codeED50,
	"nad27":                                  codeNAD27,
	"gcs_north_american_1927":                codeNAD27,
	"wgs_84_pseudo_mercator":                 codeWebMerc,
	"wgs_1984_web_mercator":                  codeWebMerc,
	"wgs_1984_web_mercator_auxiliary_sphere": codeWebMerc,
	"popular_visualisation_crs_mercator":     codeWebMerc,
	"google_maps_global_mercator":            codeWebMerc,
	"rgf93_lambert_93":                       codeLambert93,
	"rgf93_v1_lambert_93":                    codeLambert93,
	"rgf_1993_lambert_93":                    codeLambert93,
	"ntf_paris_lambert_zone_ii":              codeLambertII,
	"ntf_paris_lambert_ii_extended":          codeLambertII,
}

var (
	utmNamePattern = regexp.MustCompile(`^(wgs_84|wgs_1984|etrs89|etrs_1989|nad83|nad_1983|ed50|ed_1950|european_datum_1950)_utm_zone_(\d{1,2})([ns])$`)
	ccNamePattern  = regexp.MustCompile(`^(?:rgf93|rgf93_v1|rgf_1993)_cc(\d{2})$`)
	nonAlnum       = regexp.MustCompile(`[^a-z0-9]+`)
)

// utmNameOffsets maps the datum prefix of a UTM name to its northern code run.
var utmNameOffsets = map[string]int{
	"wgs_84":              utmZoneOffsetN,
	"wgs_1984":            utmZoneOffsetN,
	"etrs89":              25800,
	"etrs_1989":           25800,
	"nad83":               26900,
	"nad_1983":            26900,
	"ed50":                ed50UTMOffset,
	"ed_1950":             ed50UTMOffset,
	"european_datum_1950": ed50UTMOffset,
}

var names = map[int]string{
	codeWGS84:     "WGS 84",
	codeRGF93:     "RGF93",
	codeETRS89:    "ETRS89",
	codeNAD83:     "NAD83",
	codeNTF:       "NTF",
	codeED50:      "ED50",
	codeNAD27:     "NAD27",
	codeWebMerc:   "WGS 84 / Pseudo-Mercator",
	codeLambert93: "RGF93 / Lambert-93",
	codeLambertII: "NTF (Paris) / Lambert zone II",
}

// FromEPSG returns the CRS for an EPSG code, folding known aliases.
func FromEPSG(code int) CRS {
	if canonical, ok := aliases[code]; ok {
		code = canonical
	}
	c := CRS{Code: code, Name: names[code]}
	switch {
	case code >= ccFirst && code <= ccLast:
		c.Name = fmt.Sprintf("RGF93 / CC%d", code-ccLatOffset)
	case code >= ed50UTMOffset+ed50UTMFirst && code <= ed50UTMOffset+ed50UTMLast:
		c.Name = fmt.Sprintf("ED50 / UTM zone %dN", code-ed50UTMOffset)
	}
	if f, ok := utmFamilyOf(code); ok {
		hemisphere := "N"
		if !f.northern {
			hemisphere = "S"
		}
		c.Name = fmt.Sprintf("%s / UTM zone %d%s", f.datum, code-f.offset, hemisphere)
	}
	return c
}

// Identify determines the system declared by WKT text, typically the contents
// of a .prj file. The top-level AUTHORITY (WKT1) or ID (WKT2) wins, then the
// object name is matched against known ESRI and OGC names, then a geographic
// system on the WGS 84 datum is taken as EPSG:4326. Failing all of those, a
// WKT1 definition with a supported projection is kept without a code and
// reprojected from its own parameters.
func Identify(wkt string) (CRS, error) {
	root, err := parseWKT(wkt)
	if err != nil {
		return CRS{}, err
	}
	def, defErr := parseDefinition(root)

	c := CRS{Name: root.name()}
	if code, ok := authorityCode(root); ok {
		c = FromEPSG(code)
		if c.Name == "" {
			c.Name = root.name()
		}
	} else if code, ok := lookupName(root.name()); ok {
		c = FromEPSG(code)
	} else if def != nil && def.isWGS84() {
		c = FromEPSG(codeWGS84)
	}
	c.def = def
	if c.Code == 0 && def == nil {
		return c, fmt.Errorf("%w: %q: %v", ErrUnidentified, root.name(), defErr)
	}
	return c, nil
}

func authorityCode(root *node) (int, bool) {
	auth := root.child("AUTHORITY", "ID")
	if auth == nil || len(auth.values) < 2 {
		return 0, false
	}
	if !strings.EqualFold(strings.TrimSpace(auth.values[0]), "EPSG") && !strings.EqualFold(strings.TrimSpace(auth.values[0]), "ESRI") {
		return 0, false
	}
	code, err := strconv.Atoi(strings.TrimSpace(auth.values[1]))
	if err != nil || code <= 0 {
		return 0, false
	}
	return code, true
}

func normalizeName(name string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

func lookupName(name string) (int, bool) {
	key := normalizeName(name)
	if key == "" {
		return 0, false
	}
	if code, ok := knownNames[key]; ok {
		return code, true
	}
	if m := ccNamePattern.FindStringSubmatch(key); m != nil {
		lat, _ := strconv.Atoi(m[1])
		if code := ccLatOffset + lat; code >= ccFirst && code <= ccLast {
			return code, true
		}
		return 0, false
	}
	if m := utmNamePattern.FindStringSubmatch(key); m != nil {
		zone, _ := strconv.Atoi(m[2])
		code := utmNameOffsets[m[1]] + zone
		if m[3] == "s" {
			if utmNameOffsets[m[1]] != utmZoneOffsetN {
				return 0, false
			}
			code = utmZoneOffsetS + zone
		}
		if FromEPSG(code).Supported() {
			return code, true
		}
	}
	return 0, false
}
