// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package phase holds the event lifecycle rules.

The event moves through

	waiting → voting_p1 → closed_p1 → revealed_p1 → voting_p2 → closed_p2 → revealed_final

and never backward outside a reset. Only two statuses accept votes:

	voting_p1  participants, any visible team except their own, participant tally
	voting_p2  judges, Phase-1 selection only, judge tally

The package is pure; persisting a transition is the event service's job.
*/
package phase
