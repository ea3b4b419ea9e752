package common

import "errors"

// ErrNothingToDo signals a run that completed without finding work. The
// process exits with a distinct status so operators can tell "nothing to
// do" from "failed outright".
var ErrNothingToDo = errors.New("nothing to do")
