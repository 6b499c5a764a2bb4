package mergeinfo

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	rangeSeparatorConstant              = "-"
	nonInheritableMarkerConstant        = "*"
	emptyTokenReasonConstant            = "empty token"
	tooManySeparatorsReasonConstant     = "more than one range separator"
	nonNumericRevisionReasonConstant    = "non-numeric revision %q"
	malformedRangeErrorTemplateConstant = "malformed revision range %q: %s"
	revisionRangeStringTemplateConstant = "%d-%d"
	revisionNumberBaseConstant          = 10
	revisionNumberBitSizeConstant       = 64
)

// RevisionRange is a closed interval of repository revisions. From == To denotes a single revision.
type RevisionRange struct {
	From int64
	To   int64
}

// String renders the range in merge-info notation.
func (revisionRange RevisionRange) String() string {
	if revisionRange.From == revisionRange.To {
		return strconv.FormatInt(revisionRange.From, revisionNumberBaseConstant)
	}
	return fmt.Sprintf(revisionRangeStringTemplateConstant, revisionRange.From, revisionRange.To)
}

// MalformedRangeError reports a token that cannot be read as one or two revision numbers.
type MalformedRangeError struct {
	Token  string
	Reason string
}

// Error describes the malformed token.
func (rangeError *MalformedRangeError) Error() string {
	return fmt.Sprintf(malformedRangeErrorTemplateConstant, rangeError.Token, rangeError.Reason)
}

// ParseRevisionRange reads a single merge-info range token such as "123-456", "789" or "790*".
// Bounds are kept in the order written; "20-10" yields From 20 and To 10.
func ParseRevisionRange(token string) (RevisionRange, error) {
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return RevisionRange{}, &MalformedRangeError{Token: token, Reason: emptyTokenReasonConstant}
	}

	parts := strings.Split(trimmedToken, rangeSeparatorConstant)
	switch len(parts) {
	case 1:
		revision, parseError := parseRevisionNumber(token, parts[0])
		if parseError != nil {
			return RevisionRange{}, parseError
		}
		return RevisionRange{From: revision, To: revision}, nil
	case 2:
		fromRevision, fromError := parseRevisionNumber(token, parts[0])
		if fromError != nil {
			return RevisionRange{}, fromError
		}
		toRevision, toError := parseRevisionNumber(token, parts[1])
		if toError != nil {
			return RevisionRange{}, toError
		}
		return RevisionRange{From: fromRevision, To: toRevision}, nil
	default:
		return RevisionRange{}, &MalformedRangeError{Token: token, Reason: tooManySeparatorsReasonConstant}
	}
}

func parseRevisionNumber(token string, component string) (int64, error) {
	cleanedComponent := strings.TrimSuffix(component, nonInheritableMarkerConstant)
	if len(cleanedComponent) == 0 || !isDecimal(cleanedComponent) {
		return 0, &MalformedRangeError{Token: token, Reason: fmt.Sprintf(nonNumericRevisionReasonConstant, component)}
	}

	revision, parseError := strconv.ParseInt(cleanedComponent, revisionNumberBaseConstant, revisionNumberBitSizeConstant)
	if parseError != nil {
		return 0, &MalformedRangeError{Token: token, Reason: parseError.Error()}
	}
	return revision, nil
}

// isDecimal rejects signs and whitespace that strconv would otherwise accept.
func isDecimal(value string) bool {
	for _, character := range value {
		if character < '0' || character > '9' {
			return false
		}
	}
	return true
}
