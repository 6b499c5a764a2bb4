package mergestate

import "github.com/temirov/svntools/internal/mergeinfo"

// DetectDrift returns the head records whose branch is absent from the baseline or whose last merged
// revision advanced past the baseline. Results follow head order and carry the full head ranges,
// not only the revisions merged since the baseline. Branch names must be unique within each snapshot.
func DetectDrift(baselineRecords []mergeinfo.MergeRecord, headRecords []mergeinfo.MergeRecord) []mergeinfo.MergeRecord {
	baselineLastRevisions := make(map[string]int64, len(baselineRecords))
	for _, baselineRecord := range baselineRecords {
		baselineLastRevisions[baselineRecord.BranchName] = baselineRecord.LastRevision()
	}

	drifted := make([]mergeinfo.MergeRecord, 0, len(headRecords))
	for _, headRecord := range headRecords {
		baselineLastRevision, presentInBaseline := baselineLastRevisions[headRecord.BranchName]
		if !presentInBaseline || baselineLastRevision < headRecord.LastRevision() {
			drifted = append(drifted, headRecord)
		}
	}
	return drifted
}
