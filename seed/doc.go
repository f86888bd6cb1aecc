// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package seed loads the event roster from YAML.

	event:
	  judge_weight: 0.6
	  max_votes_p1: 3
	teams:
	  - id: alpha
	    name: Alpha
	    nickname: A
	users:
	  - code: K7QX3MPA
	    name: Pat
	    role: participant
	    team: alpha
	  - name: Jo
	    role: judge

Users without a code get one from auth.GenerateLoginCode; Apply returns
every user so the codes can be printed on badges. Event settings go
through the same validation as the admin config endpoint.
*/
package seed
