package vmv

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// vmvFile is the parse tree of a VMV document:
//
//	$PARAM_BEGIN
//	NUM_VERTS <n>
//	NUM_STRANDS <m>
//	$PARAM_END
//	$VERT_LIST_BEGIN
//	<id> <x> <y> <z> <r>        (n lines)
//	$VERT_LIST_END
//	$STRANDS_LIST_BEGIN
//	<strand id> <vert id> ...   (m lines)
//	$STRANDS_LIST_END
type vmvFile struct {
	Params  []*vmvParam  `EOL* "$PARAM_BEGIN" EOL+ @@* "$PARAM_END" EOL+`
	Verts   []*vmvVertex `"$VERT_LIST_BEGIN" EOL+ @@* "$VERT_LIST_END" EOL+`
	Strands []*vmvStrand `"$STRANDS_LIST_BEGIN" EOL+ @@* "$STRANDS_LIST_END" EOL*`
}

type vmvParam struct {
	Pos   lexer.Position
	Key   string `@Ident`
	Value int64  `@Number EOL+`
}

type vmvVertex struct {
	Pos lexer.Position
	ID  int64   `@Number`
	X   float64 `@Number`
	Y   float64 `@Number`
	Z   float64 `@Number`
	R   float64 `@Number EOL+`
}

type vmvStrand struct {
	Pos    lexer.Position
	ID     int64   `@Number`
	Points []int64 `@Number+ EOL+`
}

var sVMVLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\r\n]*`},
	{Name: "Directive", Pattern: `\$[A-Z_]+`},
	{Name: "Number", Pattern: `[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "EOL", Pattern: `[\r\n]+`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

var sParseVMV = participle.MustBuild[vmvFile](
	participle.Lexer(sVMVLexer),
	participle.Elide("Comment", "Whitespace"),
)

const (
	paramNumVerts   = "NUM_VERTS"
	paramNumStrands = "NUM_STRANDS"
)
