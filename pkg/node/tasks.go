package node

import "strings"

// TaskSet is a bit mask of scheduler tasks
type TaskSet uint8

const (
	TaskSampling TaskSet = 1 << iota
	TaskCollection
	TaskDownload
	TaskETRequest
	TaskDebugSerial
	TaskWatchdog

	TasksNone TaskSet = 0
)

var taskNames = []struct {
	task TaskSet
	name string
}{
	{TaskSampling, "sampling"},
	{TaskCollection, "collection"},
	{TaskDownload, "download"},
	{TaskETRequest, "et-request"},
	{TaskDebugSerial, "debug-serial"},
	{TaskWatchdog, "watchdog"},
}

func (s TaskSet) Has(t TaskSet) bool {
	return s&t != 0
}

func (s TaskSet) String() string {
	if s == TasksNone {
		return "none"
	}
	var names []string
	for _, tn := range taskNames {
		if s.Has(tn.task) {
			names = append(names, tn.name)
		}
	}
	return strings.Join(names, "|")
}
