package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"automator/internal/service"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Letter    rune // 0 if no letter, 'a'-'z' otherwise
	TaskNum   int  // 1-based task number
	HasLetter bool // true if a list letter was provided
}

func (r TaskRef) String() string {
	if r.HasLetter {
		return fmt.Sprintf("%c%d", r.Letter, r.TaskNum)
	}
	return strconv.Itoa(r.TaskNum)
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses the task reference in args[0].
//
//   - "3" is the third of all the owner's tasks, as numbered by the list command
//   - "b3" is the third task of list b, as lettered by the lists command
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	return parseToken(args[0])
}

// ParseTaskRefs parses one reference per arg.
func ParseTaskRefs(args []string) ([]TaskRef, error) {
	if len(args) == 0 {
		return nil, ErrTaskRefRequired
	}
	refs := make([]TaskRef, 0, len(args))
	for _, arg := range args {
		ref, err := parseToken(arg)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func parseToken(tok string) (TaskRef, error) {
	if isAllDigits(tok) {
		num, err := strconv.Atoi(tok)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", tok)
		}
		return TaskRef{TaskNum: num}, nil
	}

	if len(tok) > 1 && isLetter(rune(tok[0])) && isAllDigits(tok[1:]) {
		num, err := strconv.Atoi(tok[1:])
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", tok)
		}
		return TaskRef{Letter: rune(tok[0]), TaskNum: num, HasLetter: true}, nil
	}

	return TaskRef{}, fmt.Errorf("invalid task reference: %s", tok)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isLetter returns true if r is a lowercase letter a-z.
func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}

// ResolveListByLetter returns the list the lists command prints with letter:
// the owner's lists in creation order, lettered from 'a'.
func ResolveListByLetter(ctx context.Context, svc service.Service, owner string, letter rune) (service.TaskList, error) {
	lists := svc.Lists(ctx, owner)
	idx := int(letter - 'a')
	if !isLetter(letter) || idx >= len(lists) {
		return service.TaskList{}, fmt.Errorf("list letter not found: %c", letter)
	}
	return lists[idx], nil
}
