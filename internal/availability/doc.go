// Package availability normalizes Rently search results into one priced
// entry per vehicle category.
//
// Process applies, in order: the optional category filter, de-duplication
// by model description and final price, price-line extraction, additional
// selection, and the coverage rules that adjust insurance excess figures
// when an intermediate or maximum coverage additional is selected. Records
// with missing or malformed fields contribute zero values rather than
// failing the whole result.
package availability
