package function

import (
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/value"
)

var (
	tyHex    = expr.ValueType(value.TypeHexBinary)
	tyB64    = expr.ValueType(value.TypeBase64Binary)
	tyX500   = expr.ValueType(value.TypeX500Name)
	tyRFC822 = expr.ValueType(value.TypeRFC822Name)
	tyIP     = expr.ValueType(value.TypeIPAddress)
	tyDNS    = expr.ValueType(value.TypeDNSName)
)

// typeInfo drives the generation of the per-datatype function families
// (equality, bag, and set functions).
type typeInfo struct {
	// short is the datatype's short name as it appears in function URNs.
	short string
	// ns is the URN namespace the datatype's function family lives in.
	ns string
	// ty is the value type.
	ty expr.Type
}

var primitiveTypes = []typeInfo{
	{"string", xacml10, tyString},
	{"boolean", xacml10, tyBool},
	{"integer", xacml10, tyInt},
	{"double", xacml10, tyDouble},
	{"time", xacml10, tyTime},
	{"date", xacml10, tyDate},
	{"dateTime", xacml10, tyDateTime},
	{"dayTimeDuration", xacml30, tyDayTime},
	{"yearMonthDuration", xacml30, tyYearMonth},
	{"anyURI", xacml10, tyURI},
	{"hexBinary", xacml10, tyHex},
	{"base64Binary", xacml10, tyB64},
	{"x500Name", xacml10, tyX500},
	{"rfc822Name", xacml10, tyRFC822},
	{"ipAddress", xacml20, tyIP},
	{"dnsName", xacml20, tyDNS},
}
