/*
Package dsl provides a fluent Go builder for trading worlds.

It is the programmatic counterpart of scenario files: useful for tests,
examples and generated markets, with IDE autocompletion instead of YAML.

Example usage:

	b := dsl.New().TravelCost(2).IdleCost(1)

	b.Station("a").Good("ore").Stock(50).Sells(9).Buys(9)
	b.Station("b").Good("ore").Stock(50).Sells(14).Buys(14)

	b.Merchant("m1").At("a").Money(11).Capacity("ore", 10)

	world, err := b.Build()
*/
package dsl
