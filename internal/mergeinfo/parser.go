package mergeinfo

import (
	"errors"
	"fmt"
	"strings"
)

const (
	lineSeparatorConstant                   = "\n"
	carriageReturnConstant                  = "\r"
	pathRangeSeparatorConstant              = ":"
	rangeListSeparatorConstant              = ","
	emptyRangesMessageConstant              = "merge record requires at least one revision range"
	missingSeparatorReasonConstant          = "missing path/range separator"
	emptyPathReasonConstant                 = "empty branch path"
	emptyRangeListReasonConstant            = "empty revision range list"
	malformedMergeInfoErrorTemplateConstant = "malformed merge info on line %d (%q): %s"
	malformedMergeInfoCauseTemplateConstant = "malformed merge info on line %d (%q): %v"
	mergeRecordStringTemplateConstant       = "%s:%s"
)

// ErrEmptyRanges indicates a merge record was constructed without revision ranges.
var ErrEmptyRanges = errors.New(emptyRangesMessageConstant)

// MergeRecord lists the revision ranges of one branch that were merged into a destination.
type MergeRecord struct {
	BranchName string
	Ranges     []RevisionRange
}

// NewMergeRecord validates and constructs a MergeRecord.
func NewMergeRecord(branchName string, ranges []RevisionRange) (MergeRecord, error) {
	if len(ranges) == 0 {
		return MergeRecord{}, ErrEmptyRanges
	}
	duplicatedRanges := make([]RevisionRange, len(ranges))
	copy(duplicatedRanges, ranges)
	return MergeRecord{BranchName: branchName, Ranges: duplicatedRanges}, nil
}

// LastRevision reports the highest merged revision, the maximum To across all ranges.
func (record MergeRecord) LastRevision() int64 {
	if len(record.Ranges) == 0 {
		return 0
	}
	lastRevision := record.Ranges[0].To
	for _, revisionRange := range record.Ranges[1:] {
		if revisionRange.To > lastRevision {
			lastRevision = revisionRange.To
		}
	}
	return lastRevision
}

// String renders the record as a merge-info line without the stripped prefix.
func (record MergeRecord) String() string {
	renderedRanges := make([]string, 0, len(record.Ranges))
	for _, revisionRange := range record.Ranges {
		renderedRanges = append(renderedRanges, revisionRange.String())
	}
	return fmt.Sprintf(mergeRecordStringTemplateConstant, record.BranchName, strings.Join(renderedRanges, rangeListSeparatorConstant))
}

// MalformedMergeInfoError reports a merge-info line that is not of the form path:ranges.
type MalformedMergeInfoError struct {
	LineNumber int
	Line       string
	Reason     string
	Cause      error
}

// Error describes the malformed line.
func (mergeInfoError *MalformedMergeInfoError) Error() string {
	if mergeInfoError.Cause != nil {
		return fmt.Sprintf(malformedMergeInfoCauseTemplateConstant, mergeInfoError.LineNumber, mergeInfoError.Line, mergeInfoError.Cause)
	}
	return fmt.Sprintf(malformedMergeInfoErrorTemplateConstant, mergeInfoError.LineNumber, mergeInfoError.Line, mergeInfoError.Reason)
}

// Unwrap exposes the range error that caused the line to be rejected.
func (mergeInfoError *MalformedMergeInfoError) Unwrap() error {
	return mergeInfoError.Cause
}

// Parse reads a merge-info blob, one "path:range,range" line per source branch, into merge records.
// The first occurrence of stripPrefix is removed from each path. An empty blob yields no records.
// Any malformed line or range aborts the whole parse.
func Parse(blob string, stripPrefix string) ([]MergeRecord, error) {
	records := make([]MergeRecord, 0)
	recordIndexByBranch := make(map[string]int)

	for lineIndex, rawLine := range strings.Split(blob, lineSeparatorConstant) {
		line := strings.TrimSuffix(rawLine, carriageReturnConstant)
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}

		branchName, ranges, lineError := parseLine(line, stripPrefix)
		if lineError != nil {
			lineError.LineNumber = lineIndex + 1
			lineError.Line = line
			return nil, lineError
		}

		if existingIndex, seen := recordIndexByBranch[branchName]; seen {
			records[existingIndex].Ranges = append(records[existingIndex].Ranges, ranges...)
			continue
		}

		record, recordError := NewMergeRecord(branchName, ranges)
		if recordError != nil {
			return nil, &MalformedMergeInfoError{LineNumber: lineIndex + 1, Line: line, Cause: recordError}
		}
		recordIndexByBranch[branchName] = len(records)
		records = append(records, record)
	}

	return records, nil
}

// parseLine splits on the last separator so that paths containing ':' survive.
func parseLine(line string, stripPrefix string) (string, []RevisionRange, *MalformedMergeInfoError) {
	separatorIndex := strings.LastIndex(line, pathRangeSeparatorConstant)
	if separatorIndex < 0 {
		return "", nil, &MalformedMergeInfoError{Reason: missingSeparatorReasonConstant}
	}

	pathPortion := strings.TrimSpace(line[:separatorIndex])
	rangePortion := strings.TrimSpace(line[separatorIndex+1:])

	branchName := pathPortion
	if len(stripPrefix) > 0 {
		branchName = strings.Replace(pathPortion, stripPrefix, "", 1)
	}
	if len(branchName) == 0 {
		return "", nil, &MalformedMergeInfoError{Reason: emptyPathReasonConstant}
	}
	if len(rangePortion) == 0 {
		return "", nil, &MalformedMergeInfoError{Reason: emptyRangeListReasonConstant}
	}

	tokens := strings.Split(rangePortion, rangeListSeparatorConstant)
	ranges := make([]RevisionRange, 0, len(tokens))
	for _, token := range tokens {
		revisionRange, rangeError := ParseRevisionRange(token)
		if rangeError != nil {
			return "", nil, &MalformedMergeInfoError{Cause: rangeError}
		}
		ranges = append(ranges, revisionRange)
	}

	return branchName, ranges, nil
}
