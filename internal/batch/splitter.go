// Package batch implements C2: partitioning the full parametrisation
// space first across worker processes, then into word-sized BFS
// rounds within this process's slice.
package batch

import (
	"parsybone/internal/errs"
	"parsybone/internal/paramset"
)

// Round describes one word-sized batch: the absolute ParamNo range
// [First, Last) it covers, and the initial Paramset for it (with any
// padding bits, for a narrower final round, forced to 0).
type Round struct {
	First, Last int
	Width       int
	Initial     paramset.Paramset
}

// Splitter computes the batch/round partition of spec.md §4.2,
// grounded on split_manager.hpp's computeSubspace/inreaseRound.
type Splitter struct {
	processesCount int
	processNumber  int
	allParams      int

	paramsBegin, paramsEnd int
	paramsCount            int
	bitsPerRound           int
	lastRoundBits          int
	roundsCount            int
}

// New builds a Splitter for this process, 1-indexed among
// processesCount peers, over a total of allParams parametrisations.
func New(processesCount, processNumber, allParams int) (*Splitter, error) {
	if processesCount < 1 {
		return nil, errs.Newf(errs.OutOfRange, "processesCount must be >= 1, got %d", processesCount)
	}
	if processNumber < 1 || processNumber > processesCount {
		return nil, errs.Newf(errs.OutOfRange, "processNumber %d out of range [1,%d]", processNumber, processesCount)
	}
	if allParams < 1 {
		return nil, errs.Newf(errs.OutOfRange, "allParams must be >= 1, got %d", allParams)
	}
	s := &Splitter{
		processesCount: processesCount,
		processNumber:  processNumber,
		allParams:      allParams,
		bitsPerRound:   paramset.Width,
	}
	s.computeSubspace()
	return s, nil
}

func (s *Splitter) computeSubspace() {
	perProcess := s.allParams / s.processesCount
	s.paramsBegin = perProcess * (s.processNumber - 1)
	if s.processNumber == s.processesCount {
		s.paramsEnd = s.allParams
	} else {
		s.paramsEnd = perProcess * s.processNumber
	}
	s.paramsCount = s.paramsEnd - s.paramsBegin

	s.roundsCount = s.paramsCount / s.bitsPerRound
	if s.paramsCount%s.bitsPerRound == 0 {
		s.lastRoundBits = s.bitsPerRound
	} else {
		s.lastRoundBits = s.paramsCount % s.bitsPerRound
		s.roundsCount++
	}
	if s.roundsCount == 0 {
		// An empty process slice still yields one (zero-width) round.
		s.roundsCount = 1
		s.lastRoundBits = s.paramsCount
	}
}

// ProcessesCount, ProcessNumber, AllParametersCount, ThisParametersCount
// mirror split_manager.hpp's constant getters.
func (s *Splitter) ProcessesCount() int      { return s.processesCount }
func (s *Splitter) ProcessNumber() int       { return s.processNumber }
func (s *Splitter) AllParametersCount() int  { return s.allParams }
func (s *Splitter) ThisParametersCount() int { return s.paramsCount }
func (s *Splitter) RoundsCount() int         { return s.roundsCount }

// Rounds returns every word-sized round for this process's slice, in
// order, each carrying the starting Paramset (all bits set for full
// rounds, high bits only for a narrower final round).
func (s *Splitter) Rounds() []Round {
	rounds := make([]Round, 0, s.roundsCount)
	begin := s.paramsBegin
	for i := 0; i < s.roundsCount; i++ {
		isLast := i == s.roundsCount-1
		width := s.bitsPerRound
		if isLast {
			width = s.lastRoundBits
		}
		end := begin + width
		rounds = append(rounds, Round{
			First:   begin,
			Last:    end,
			Width:   width,
			Initial: paramset.Leading(width),
		})
		begin = end
	}
	return rounds
}
