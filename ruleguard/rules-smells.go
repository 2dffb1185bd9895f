package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// Two consecutive guards with the same return are mergeable with ||.
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	// Nested loops are not always wrong, but in the request path they are
	// worth a second look.
	m.Match(`for $*_ { for $*_ { $*_ } }`).
		Report(`nested for-loop; consider extracting inner loop logic or reducing algorithmic complexity`)
}

func errorHandling(m dsl.Matcher) {
	m.Match(`errors.New(fmt.Sprintf($*args))`).
		Report(`errors.New(fmt.Sprintf(...)) is fmt.Errorf`).
		Suggest(`fmt.Errorf($args)`)

	// Wrapping with %v loses the cause; classified errors depend on
	// errors.As walking the chain.
	m.Match(`fmt.Errorf($fmt, $err)`).
		Where(m["err"].Type.Is("error") && m["fmt"].Text.Matches(`%v"$`)).
		Report(`wrapping an error with %v breaks errors.As/Is; prefer %w`)
}
