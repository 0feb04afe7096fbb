package catalog

// Furniture returns the storefront's category menu. Product category tags
// written by the admin console use the leaf labels below.
func Furniture() *Tree {
	return NewTree(
		Child("Furniture", NewSection(
			Child("Table", NewSection(
				Child("Coffee Table", Leaf{}),
				Child("Side Table", Leaf{}),
				Child("Console Table", Leaf{}),
			)),
			Child("Chair", Leaf{}),
		)),
		Child("Lighting", NewSection(
			Child("Hanging Lamps", Leaf{}),
			Child("Floor Lamps", Leaf{}),
			Child("Candle Holders", Leaf{}),
		)),
		Child("Christmas", NewSection(
			Child("Sculpture Decor", Leaf{}),
			Child("Serving Bowls", Leaf{}),
			Child("Platters", Leaf{}),
			Child("T - Lights", Leaf{}),
		)),
		Child("Wall Decor", NewSection(
			Child("Frame", NewSection(
				Child("Mirrors", Leaf{}),
				Child("Photo Frames", Leaf{}),
			)),
			Child("Wall Arts", Leaf{}),
			Child("Wall Clocks", Leaf{}),
		)),
		Child("Home & Garden", NewSection(
			Child("Furniture", Leaf{}),
			Child("Planters", Leaf{}),
			Child("Indoor Vases", Leaf{}),
		)),
	)
}
