// Package banktags reads and writes the Banktags text format.
//
// A Banktags string is one comma-delimited line:
//
//	banktags,1,<name>,<iconExternalId>,layout,<cell>,<externalId>[,<cell>,<externalId>...]
//
// Cells are row-major indices into an 8-column grid (x = cell mod 8,
// y = cell / 8). Ids on the wire are external (game) ids; [Decode] maps them
// to internal ids through a [Resolver] and [Encode] maps back through a
// [ForwardMapper]. Both are satisfied by [catalog.Loader]; a bare
// [catalog.Catalog] is a ForwardMapper and [catalog.Chain] is a Resolver.
//
// Decoding never fails because of an unknown id. Such ids fall back to
// their numeric value (or, failing that, stay opaque) and are reported as
// [UnresolvedIDWarning]s on the returned [Tag].
//
// [catalog.Loader]: github.com/matzehuels/banktags/pkg/catalog.Loader
// [catalog.Catalog]: github.com/matzehuels/banktags/pkg/catalog.Catalog
// [catalog.Chain]: github.com/matzehuels/banktags/pkg/catalog.Chain
package banktags
