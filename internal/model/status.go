package model

import (
	"errors"
	"fmt"
)

// Status is the lifecycle state of an analysis request.
type Status string

const (
	StatusAwaitingPayment  Status = "aguardando_pagamento"
	StatusAwaitingAnalysis Status = "aguardando_analise"
	StatusInAnalysis       Status = "em_analise"
	StatusCompleted        Status = "concluido"
	StatusCancelled        Status = "cancelado"
)

// Statuses lists every lifecycle state in forward order, the side state last.
var Statuses = []Status{
	StatusAwaitingPayment,
	StatusAwaitingAnalysis,
	StatusInAnalysis,
	StatusCompleted,
	StatusCancelled,
}

// ErrInvalidTransition is returned for a move the lifecycle does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions maps each state to the states it may move into. The main
// sequence only moves forward; cancellation is reachable from any
// non-terminal state.
var transitions = map[Status][]Status{
	StatusAwaitingPayment:  {StatusAwaitingAnalysis, StatusCancelled},
	StatusAwaitingAnalysis: {StatusInAnalysis, StatusCancelled},
	StatusInAnalysis:       {StatusCompleted, StatusCancelled},
	StatusCompleted:        {},
	StatusCancelled:        {},
}

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition moves the request to the next state or fails with
// ErrInvalidTransition.
func (r *AnalysisRequest) Transition(next Status) error {
	if !r.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, next)
	}
	r.Status = next
	return nil
}
