package mergestate

import "github.com/temirov/svntools/internal/mergeinfo"

// BranchesAlreadyMerged returns, in input order, the branches whose head revision is exactly the
// last revision recorded for them in the destination's merge info.
func BranchesAlreadyMerged(mergeRecords []mergeinfo.MergeRecord, branches []BranchInfo) []BranchInfo {
	merged := make([]BranchInfo, 0, len(branches))
	for _, branch := range branches {
		if branchHasBeenMerged(mergeRecords, branch) {
			merged = append(merged, branch)
		}
	}
	return merged
}

// BranchesNotYetMerged returns, in input order, the complement of BranchesAlreadyMerged.
func BranchesNotYetMerged(mergeRecords []mergeinfo.MergeRecord, branches []BranchInfo) []BranchInfo {
	unmerged := make([]BranchInfo, 0, len(branches))
	for _, branch := range branches {
		if !branchHasBeenMerged(mergeRecords, branch) {
			unmerged = append(unmerged, branch)
		}
	}
	return unmerged
}

// branchHasBeenMerged uses exact equality; a branch with commits past its merged revision is unmerged.
func branchHasBeenMerged(mergeRecords []mergeinfo.MergeRecord, branch BranchInfo) bool {
	for _, record := range mergeRecords {
		if record.BranchName == branch.Name && record.LastRevision() == branch.LastRevision.Revision {
			return true
		}
	}
	return false
}
