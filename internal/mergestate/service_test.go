package mergestate_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/svntools/internal/mergeinfo"
	"github.com/temirov/svntools/internal/mergestate"
)

const (
	testDestinationURLConstant    = "svn://svn.example.com/trunk"
	testBranchesParentURLConstant = "svn://svn.example.com/branches/"
)

type mergeInfoAtCall struct {
	location string
	revision int64
}

type stubRepository struct {
	branches          []mergestate.BranchInfo
	listError         error
	headMergeInfo     string
	headError         error
	mergeInfoByRev    map[int64]string
	mergeInfoAtError  error
	firstRevision     int64
	firstRevisionErr  error
	listedLocations   []string
	mergeInfoAtCalls  []mergeInfoAtCall
	firstRevisionArgs []int64
}

func (repository *stubRepository) ListBranches(_ context.Context, parentLocation string) ([]mergestate.BranchInfo, error) {
	repository.listedLocations = append(repository.listedLocations, parentLocation)
	if repository.listError != nil {
		return nil, repository.listError
	}
	return repository.branches, nil
}

func (repository *stubRepository) MergeInfo(context.Context, string) (string, error) {
	if repository.headError != nil {
		return "", repository.headError
	}
	return repository.headMergeInfo, nil
}

func (repository *stubRepository) MergeInfoAt(_ context.Context, location string, revision int64) (string, error) {
	repository.mergeInfoAtCalls = append(repository.mergeInfoAtCalls, mergeInfoAtCall{location: location, revision: revision})
	if repository.mergeInfoAtError != nil {
		return "", repository.mergeInfoAtError
	}
	return repository.mergeInfoByRev[revision], nil
}

func (repository *stubRepository) FirstRevision(_ context.Context, _ string, lowerBound int64) (int64, error) {
	repository.firstRevisionArgs = append(repository.firstRevisionArgs, lowerBound)
	if repository.firstRevisionErr != nil {
		return 0, repository.firstRevisionErr
	}
	return repository.firstRevision, nil
}

func TestNewServiceRequiresRepository(testInstance *testing.T) {
	_, creationError := mergestate.NewService(zap.NewNop(), nil)
	require.ErrorIs(testInstance, creationError, mergestate.ErrRepositoryNotConfigured)

	service, creationError := mergestate.NewService(nil, &stubRepository{})
	require.NoError(testInstance, creationError)
	require.NotNil(testInstance, service)
}

func TestServiceClassifiesBranches(testInstance *testing.T) {
	repository := &stubRepository{
		headMergeInfo: "/branches/feature-x:30-42\n/branches/feature-y:7\n/trunk-old:1-3\n",
		branches: []mergestate.BranchInfo{
			branch("feature-x", 42),
			branch("feature-y", 9),
			branch("feature-z", 11),
		},
	}
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	service, creationError := mergestate.NewService(zap.New(observedCore), repository)
	require.NoError(testInstance, creationError)

	options := mergestate.Options{DestinationURL: testDestinationURLConstant, BranchesParentURL: testBranchesParentURLConstant}

	released, releasedError := service.ReleasedBranches(context.Background(), options)
	require.NoError(testInstance, releasedError)
	require.Equal(testInstance, []string{"feature-x"}, branchNames(released))

	unreleased, unreleasedError := service.UnreleasedBranches(context.Background(), options)
	require.NoError(testInstance, unreleasedError)
	require.Equal(testInstance, []string{"feature-y", "feature-z"}, branchNames(unreleased))

	require.Equal(testInstance, []string{testBranchesParentURLConstant, testBranchesParentURLConstant}, repository.listedLocations)

	entries := observedLogs.FilterMessage("Classified branches").All()
	require.Len(testInstance, entries, 2)
	require.Equal(testInstance, int64(3), entries[0].ContextMap()["branch_count"])
	require.Equal(testInstance, int64(1), entries[0].ContextMap()["merged_count"])
	require.Equal(testInstance, int64(2), entries[1].ContextMap()["unmerged_count"])
}

func TestServicePropagatesFailures(testInstance *testing.T) {
	retrievalFailure := errors.New("authorization failed")
	options := mergestate.Options{DestinationURL: testDestinationURLConstant, BranchesParentURL: testBranchesParentURLConstant}

	testCases := []struct {
		name        string
		repository  *stubRepository
		options     mergestate.Options
		expectedErr error
	}{
		{
			name:        "missing_destination",
			repository:  &stubRepository{},
			options:     mergestate.Options{BranchesParentURL: testBranchesParentURLConstant},
			expectedErr: mergestate.ErrDestinationRequired,
		},
		{
			name:        "missing_branches_parent",
			repository:  &stubRepository{},
			options:     mergestate.Options{DestinationURL: testDestinationURLConstant},
			expectedErr: mergestate.ErrBranchesParentRequired,
		},
		{
			name:        "merge_info_failure",
			repository:  &stubRepository{headError: retrievalFailure},
			options:     options,
			expectedErr: retrievalFailure,
		},
		{
			name:        "catalog_failure",
			repository:  &stubRepository{listError: retrievalFailure},
			options:     options,
			expectedErr: retrievalFailure,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(subtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			service, creationError := mergestate.NewService(zap.NewNop(), testCase.repository)
			require.NoError(testInstance, creationError)

			_, releasedError := service.ReleasedBranches(context.Background(), testCase.options)
			require.ErrorIs(testInstance, releasedError, testCase.expectedErr)

			_, unreleasedError := service.UnreleasedBranches(context.Background(), testCase.options)
			require.ErrorIs(testInstance, unreleasedError, testCase.expectedErr)
		})
	}
}

func TestServiceDoesNotSwallowMalformedMergeInfo(testInstance *testing.T) {
	repository := &stubRepository{
		headMergeInfo: "/branches/feature-x:30-42,oops",
		branches:      []mergestate.BranchInfo{branch("feature-x", 42)},
	}
	service, creationError := mergestate.NewService(zap.NewNop(), repository)
	require.NoError(testInstance, creationError)

	released, releasedError := service.ReleasedBranches(context.Background(), mergestate.Options{
		DestinationURL:    testDestinationURLConstant,
		BranchesParentURL: testBranchesParentURLConstant,
	})
	require.Nil(testInstance, released)

	var rangeError *mergeinfo.MalformedRangeError
	require.ErrorAs(testInstance, releasedError, &rangeError)
	require.Empty(testInstance, repository.listedLocations)
}

func TestServiceMergedSinceFirstRevision(testInstance *testing.T) {
	repository := &stubRepository{
		firstRevision:  17,
		mergeInfoByRev: map[int64]string{17: "/branches/b1:10\n/branches/b2:5"},
		headMergeInfo:  "/branches/b1:10\n/branches/b2:5-9\n/branches/b3:21",
	}
	service, creationError := mergestate.NewService(zap.NewNop(), repository)
	require.NoError(testInstance, creationError)

	drifted, driftError := service.MergedSinceBaseline(context.Background(), mergestate.Options{
		DestinationURL:    testDestinationURLConstant,
		BranchesParentURL: "svn://svn.example.com/branches",
	})
	require.NoError(testInstance, driftError)
	require.Equal(testInstance, []mergeinfo.MergeRecord{
		record("b2", mergeinfo.RevisionRange{From: 5, To: 9}),
		record("b3", mergeinfo.RevisionRange{From: 21, To: 21}),
	}, drifted)
	require.Equal(testInstance, []int64{1}, repository.firstRevisionArgs)
	require.Equal(testInstance, []mergeInfoAtCall{{location: testDestinationURLConstant, revision: 17}}, repository.mergeInfoAtCalls)
}

func TestServiceMergedSinceExplicitBaseline(testInstance *testing.T) {
	repository := &stubRepository{
		mergeInfoByRev: map[int64]string{300: "/branches/b1:10-20"},
		headMergeInfo:  "/branches/b1:10-20",
	}
	service, creationError := mergestate.NewService(zap.NewNop(), repository)
	require.NoError(testInstance, creationError)

	drifted, driftError := service.MergedSinceBaseline(context.Background(), mergestate.Options{
		DestinationURL:    testDestinationURLConstant,
		BranchesParentURL: testBranchesParentURLConstant,
		BaselineRevision:  300,
	})
	require.NoError(testInstance, driftError)
	require.Empty(testInstance, drifted)
	require.Empty(testInstance, repository.firstRevisionArgs)
}

func TestServiceMergedSinceBaselineFailures(testInstance *testing.T) {
	retrievalFailure := errors.New("connection reset")
	options := mergestate.Options{DestinationURL: testDestinationURLConstant, BranchesParentURL: testBranchesParentURLConstant}

	firstRevisionService, _ := mergestate.NewService(zap.NewNop(), &stubRepository{firstRevisionErr: retrievalFailure})
	_, firstRevisionError := firstRevisionService.MergedSinceBaseline(context.Background(), options)
	require.ErrorIs(testInstance, firstRevisionError, retrievalFailure)

	baselineService, _ := mergestate.NewService(zap.NewNop(), &stubRepository{firstRevision: 1, mergeInfoAtError: retrievalFailure})
	_, baselineError := baselineService.MergedSinceBaseline(context.Background(), options)
	require.ErrorIs(testInstance, baselineError, retrievalFailure)

	malformedService, _ := mergestate.NewService(zap.NewNop(), &stubRepository{
		firstRevision:  1,
		mergeInfoByRev: map[int64]string{1: "/branches/b1"},
	})
	_, malformedError := malformedService.MergedSinceBaseline(context.Background(), options)
	var mergeInfoError *mergeinfo.MalformedMergeInfoError
	require.ErrorAs(testInstance, malformedError, &mergeInfoError)
}
