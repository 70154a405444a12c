package directory

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"

	"dirgate/internal/domain"
	pstrings "dirgate/pkg/platform/strings"
)

// Attribute names requested on every search. The set is fixed for
// compatibility with the systems consuming the decoded records.
const (
	attrAccountName    = "sAMAccountName"
	attrCommonName     = "cn"
	attrSurname        = "sn"
	attrInitials       = "initials"
	attrDisplayName    = "displayName"
	attrGivenName      = "givenName"
	attrMail           = "mail"
	attrDepartment     = "department"
	attrCompany        = "company"
	attrPrincipalName  = "userPrincipalName"
	attrTitle          = "title"
	attrMailNickname   = "mailNickname"
	attrPhoneNumber    = "telephoneNumber"
	attrAccountControl = "userAccountControl"
	attrBadPwdCount    = "badPwdCount"
	attrLockoutTime    = "lockoutTime"
	attrAccountExpires = "accountExpires"
	attrMemberOf       = "memberOf"
)

// disabledOUMarker flags entries parked under the disabled-accounts
// organizational unit.
const disabledOUMarker = "Disabled Accounts"

// domainComponentDelimiter separates concatenated group DNs inside the
// group-membership attribute value.
const domainComponentDelimiter = "DC=mx,"

func requestedAttributes() []string {
	return []string{
		attrAccountName, attrCommonName, attrSurname, attrInitials,
		attrDisplayName, attrGivenName, attrMail, attrDepartment,
		attrCompany, attrPrincipalName, attrTitle, attrMailNickname,
		attrPhoneNumber, attrAccountControl, attrBadPwdCount,
		attrLockoutTime, attrAccountExpires, attrMemberOf,
	}
}

// decodeEntry maps one raw directory entry into an IdentityRecord. Missing or
// malformed attributes degrade to zero values; a single bad attribute never
// fails the whole lookup.
func decodeEntry(entry *ldap.Entry, appName string, withRawDetail bool) *domain.IdentityRecord {
	memberOf := strings.Join(entry.GetAttributeValues(attrMemberOf), ",")
	appGroups, allGroups := parseGroups(memberOf, appName)

	record := &domain.IdentityRecord{
		AccountID:           entry.GetAttributeValue(attrAccountName),
		Initials:            entry.GetAttributeValue(attrInitials),
		AccountControlFlags: entry.GetAttributeValue(attrAccountControl),
		CommonName:          entry.GetAttributeValue(attrCommonName),
		GivenName:           entry.GetAttributeValue(attrGivenName),
		Title:               entry.GetAttributeValue(attrTitle),
		Department:          entry.GetAttributeValue(attrDepartment),
		PhoneExtension:      entry.GetAttributeValue(attrPhoneNumber),
		Active:              !strings.Contains(entry.DN, disabledOUMarker),
		PrincipalName:       entry.GetAttributeValue(attrPrincipalName),
		Email:               entry.GetAttributeValue(attrMail),
		FailedAttempts:      decodeCount(entry.GetAttributeValue(attrBadPwdCount)),
		LockoutTimestamp:    decodeFiletime(entry.GetAttributeValue(attrLockoutTime)),
		ApplicationGroups:   appGroups,
		AllGroups:           allGroups,
	}
	if withRawDetail {
		record.RawDetail = rawDetail(entry)
	}
	return record
}

// decodeCount parses a counter attribute, defaulting to 0 on absence or junk.
func decodeCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// filetimeEpochOffsetMillis is the span between 1601-01-01 and 1970-01-01.
const filetimeEpochOffsetMillis = 11_644_473_600_000

// decodeFiletime converts a FILETIME-style value (100-nanosecond ticks since
// 1601-01-01) into a wall-clock timestamp. Empty, too-short or unparsable
// values mean no lockout timestamp.
func decodeFiletime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if len(raw) <= 5 {
		return nil
	}
	ticks, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	millis := ticks/10_000 - filetimeEpochOffsetMillis
	t := time.UnixMilli(millis).UTC()
	return &t
}

// parseGroups extracts group common names from the concatenated
// group-membership string. allGroups keeps every group, deduplicated in
// first-seen order; appGroups keeps the subset whose raw DN fragment contains
// the requesting application's name token.
func parseGroups(memberOf, appName string) (appGroups, allGroups []string) {
	appGroups = []string{}
	allGroups = []string{}
	if memberOf == "" {
		return appGroups, allGroups
	}
	for _, fragment := range strings.Split(memberOf, domainComponentDelimiter) {
		name, ok := groupCommonName(fragment)
		if !ok {
			continue
		}
		allGroups = append(allGroups, name)
		if appName != "" && strings.Contains(fragment, appName) {
			appGroups = append(appGroups, name)
		}
	}
	return pstrings.DedupeAndTrim(appGroups), pstrings.DedupeAndTrim(allGroups)
}

// groupCommonName pulls the substring between "CN=" and the next comma.
func groupCommonName(fragment string) (string, bool) {
	i := strings.Index(fragment, "CN=")
	if i < 0 {
		return "", false
	}
	rest := fragment[i+len("CN="):]
	j := strings.Index(rest, ",")
	if j < 0 {
		return "", false
	}
	return rest[:j], true
}

// rawDetail renders the entry's attributes as "name: value" lines for the
// full-profile operation.
func rawDetail(entry *ldap.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "dn: %s", entry.DN)
	for _, attr := range entry.Attributes {
		fmt.Fprintf(&b, "\n%s: %s", attr.Name, strings.Join(attr.Values, "; "))
	}
	return b.String()
}
