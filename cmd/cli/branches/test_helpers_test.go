package branches_test

import (
	"context"
	"strings"

	"github.com/temirov/svntools/internal/execshell"
)

const (
	testDestinationURLConstant = "svn://svn.example.com/trunk"
	testBranchesURLConstant    = "svn://svn.example.com/branches"
	testListResponseConstant   = `<?xml version="1.0" encoding="UTF-8"?>
<lists>
<list path="svn://svn.example.com/branches">
<entry kind="dir">
<name>feature-x</name>
<commit revision="42">
<author>alice</author>
<date>2024-03-15T11:55:00.000000Z</date>
</commit>
</entry>
<entry kind="dir">
<name>feature-y</name>
<commit revision="57">
<author>bob</author>
<date>2024-03-16T09:00:00.000000Z</date>
</commit>
</entry>
</list>
</lists>`
	testFirstRevisionLogConstant = `<?xml version="1.0" encoding="UTF-8"?>
<log>
<logentry revision="5"></logentry>
</log>`
	testHeadMergeInfoConstant = "/branches/feature-x:30-42\n/branches/feature-y:50-55\n"
)

type routedSubversionExecutor struct {
	responses map[string]string
	failures  map[string]error
	recorded  [][]string
}

// routeKey names a request by subcommand, with "@" appended for peg revision reads.
func routeKey(arguments []string) string {
	if len(arguments) == 0 {
		return ""
	}
	key := arguments[0]
	if strings.Contains(arguments[len(arguments)-1], "@") {
		key += "@"
	}
	return key
}

func (executor *routedSubversionExecutor) ExecuteSubversion(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, details.Arguments)
	key := routeKey(details.Arguments)
	if failure, failed := executor.failures[key]; failed {
		return execshell.ExecutionResult{}, failure
	}
	return execshell.ExecutionResult{StandardOutput: executor.responses[key]}, nil
}

func newRoutedExecutor() *routedSubversionExecutor {
	return &routedSubversionExecutor{
		responses: map[string]string{
			"list":     testListResponseConstant,
			"propget":  testHeadMergeInfoConstant,
			"propget@": "/branches/feature-x:30-42\n",
			"log":      testFirstRevisionLogConstant,
		},
		failures: map[string]error{},
	}
}
