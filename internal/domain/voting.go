package domain

import (
	"fmt"
	"strings"
)

type VoteChoice string

const (
	VoteYes     VoteChoice = "yes"
	VoteNo      VoteChoice = "no"
	VoteAbstain VoteChoice = "abstain"
)

func ParseVoteChoice(raw string) (VoteChoice, error) {
	switch VoteChoice(strings.ToLower(strings.TrimSpace(raw))) {
	case VoteYes, "y", "for":
		return VoteYes, nil
	case VoteNo, "n", "against":
		return VoteNo, nil
	case VoteAbstain, "a":
		return VoteAbstain, nil
	}

	return "", fmt.Errorf("unknown vote %q", raw)
}

// CanCast reports whether a delegate with status may cast choice. Delegates
// present and voting gave up the right to abstain at roll call.
func CanCast(status AttendanceStatus, choice VoteChoice) bool {
	if !status.IsPresent() {
		return false
	}
	if choice == VoteAbstain {
		return status == StatusPresent
	}
	return true
}

type Tally struct {
	Yes      int
	No       int
	Abstain  int
	Eligible int
}

func CountVotes(votes map[string]VoteChoice, eligible int) Tally {
	tally := Tally{Eligible: eligible}
	for _, choice := range votes {
		switch choice {
		case VoteYes:
			tally.Yes++
		case VoteNo:
			tally.No++
		case VoteAbstain:
			tally.Abstain++
		}
	}
	return tally
}

func (t Tally) Cast() int {
	return t.Yes + t.No + t.Abstain
}

// Substantive counts the votes that decide the outcome; abstentions do not.
func (t Tally) Substantive() int {
	return t.Yes + t.No
}

func (t Tally) Required() int {
	return t.Substantive()/2 + 1
}

func (t Tally) Passed() bool {
	return t.Substantive() > 0 && t.Yes >= t.Required()
}

func (t Tally) Complete() bool {
	return t.Eligible > 0 && t.Cast() >= t.Eligible
}
