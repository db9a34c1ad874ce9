// Package locate navigates runs of tokens around a declaration.
//
// A run is a contiguous stretch of tokens whose kinds all belong to a skip
// set. When a skip set holds a closing delimiter (AttributeClose, DocClose,
// RParen) the walk jumps over the whole paired group, so attribute
// arguments and doc comment text never end a run early.
//
// Callers pick the skip set that matches the grammar preceding their
// declaration. A set that omits a kind the source actually uses stops the
// walk at that token; that is the contract, not a fault of the walk.
package locate
