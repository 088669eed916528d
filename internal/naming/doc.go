// Package naming builds batch output file names and resolves in-run
// collisions between sources that share a base name.
//
// Output names are flat: the operation prefix plus the source's base name
// ("encoded_notes.txt"). Inputs from different directories can therefore
// collide; CollisionResolver hands out " - dupN" variants in the order
// sources are resolved.
package naming
