package language

// parser is a recursive-descent consumer of the lexer's token stream, one
// method per grammar production. The current token is the only lookahead:
// "... on T" and "... Name" split on the token after the spread.
type parser struct {
	lexer *Lexer
	token Token

	lexErr   error
	parseErr error
}

// ParseQuery parses a complete query document. It fails with *LexError for
// malformed source text and *ParseError for grammar violations, including
// trailing tokens after the last definition.
func ParseQuery(source string) (*Document, error) {
	p := &parser{lexer: NewLexer(source)}
	p.advance()
	doc := p.parseDocument()
	if p.lexErr != nil {
		return nil, p.lexErr
	}
	if p.parseErr != nil {
		return nil, p.parseErr
	}
	return doc, nil
}

func (p *parser) advance() {
	if p.lexErr != nil || p.parseErr != nil {
		return
	}
	tok, err := p.lexer.Next()
	if err != nil {
		p.lexErr = err
		p.token = Token{Kind: TokenEOF, Pos: p.token.Pos}
		return
	}
	p.token = tok
}

func (p *parser) errorExpected(expected string) {
	if p.lexErr != nil || p.parseErr != nil {
		return
	}
	p.parseErr = &ParseError{Pos: p.token.Pos, Expected: expected, Found: p.token.String()}
}

func (p *parser) failed() bool { return p.lexErr != nil || p.parseErr != nil }

// expect consumes a token of the given kind or records a parse error.
func (p *parser) expect(kind TokenKind) Token {
	tok := p.token
	if tok.Kind != kind {
		p.errorExpected(kind.expectString())
		return tok
	}
	p.advance()
	return tok
}

func (p *parser) expectName() string {
	tok := p.token
	if tok.Kind != TokenName {
		p.errorExpected("Name")
		return ""
	}
	p.advance()
	return tok.Value
}

func (p *parser) expectKeyword(value string) {
	if p.token.Kind != TokenName || p.token.Value != value {
		p.errorExpected(`"` + value + `"`)
		return
	}
	p.advance()
}

// skip consumes the current token when it matches kind.
func (p *parser) skip(kind TokenKind) bool {
	if p.token.Kind != kind {
		return false
	}
	p.advance()
	return true
}

func (p *parser) parseDocument() *Document {
	doc := &Document{}
	for p.token.Kind != TokenEOF && !p.failed() {
		p.parseDefinition(doc)
	}
	if p.failed() {
		return nil
	}
	// An anonymous operation is shorthand for a lone query; it cannot share a
	// document with other operations.
	if len(doc.Operations) > 1 {
		for _, op := range doc.Operations {
			if op.Name == "" {
				p.parseErr = &ParseError{
					Pos:      op.Position,
					Expected: "a named operation",
					Found:    "an anonymous operation in a multi-operation document",
				}
				return nil
			}
		}
	}
	return doc
}

func (p *parser) parseDefinition(doc *Document) {
	switch {
	case p.token.Kind == TokenBraceL:
		doc.Operations = append(doc.Operations, p.parseOperationDefinition())
	case p.token.Kind == TokenName:
		switch p.token.Value {
		case "query", "mutation", "subscription":
			doc.Operations = append(doc.Operations, p.parseOperationDefinition())
		case "fragment":
			doc.Fragments = append(doc.Fragments, p.parseFragmentDefinition())
		default:
			p.errorExpected(`"query", "mutation", "subscription", or "fragment"`)
		}
	default:
		p.errorExpected("a definition")
	}
}

func (p *parser) parseOperationDefinition() *OperationDefinition {
	op := &OperationDefinition{Operation: Query, Position: p.token.Pos}
	if p.token.Kind == TokenBraceL {
		op.SelectionSet = p.parseSelectionSet()
		return op
	}

	op.Operation = Operation(p.expectName())
	if p.token.Kind == TokenName {
		op.Name = p.token.Value
		p.advance()
	}
	op.VariableDefinitions = p.parseVariableDefinitions()
	op.Directives = p.parseDirectives(false)
	op.SelectionSet = p.parseSelectionSet()
	return op
}

func (p *parser) parseVariableDefinitions() VariableDefinitionList {
	if !p.skip(TokenParenL) {
		return nil
	}
	var defs VariableDefinitionList
	for p.token.Kind != TokenParenR && p.token.Kind != TokenEOF && !p.failed() {
		defs = append(defs, p.parseVariableDefinition())
	}
	p.expect(TokenParenR)
	return defs
}

func (p *parser) parseVariableDefinition() *VariableDefinition {
	def := &VariableDefinition{Position: p.token.Pos}
	p.expect(TokenDollar)
	def.Variable = p.expectName()
	p.expect(TokenColon)
	def.Type = p.parseType()
	if p.skip(TokenEquals) {
		def.DefaultValue = p.parseValue(true)
	}
	def.Directives = p.parseDirectives(true)
	return def
}

func (p *parser) parseSelectionSet() SelectionSet {
	p.expect(TokenBraceL)
	var set SelectionSet
	for p.token.Kind != TokenBraceR && p.token.Kind != TokenEOF && !p.failed() {
		set = append(set, p.parseSelection())
	}
	if len(set) == 0 && !p.failed() {
		p.errorExpected("at least one Selection")
	}
	p.expect(TokenBraceR)
	return set
}

func (p *parser) parseSelection() Selection {
	if p.token.Kind == TokenSpread {
		return p.parseFragment()
	}
	return p.parseField()
}

func (p *parser) parseField() *Field {
	field := &Field{Position: p.token.Pos}
	field.Name = p.expectName()
	if p.skip(TokenColon) {
		field.Alias = field.Name
		field.Name = p.expectName()
	}
	field.Arguments = p.parseArguments(false)
	field.Directives = p.parseDirectives(false)
	if p.token.Kind == TokenBraceL {
		field.SelectionSet = p.parseSelectionSet()
	}
	return field
}

// parseFragment handles both spreads and inline fragments. After "..." a
// bare "on" means an inline fragment with a type condition; any other name is
// a spread. An immediate "{" or "@" is an inline fragment without condition.
func (p *parser) parseFragment() Selection {
	pos := p.token.Pos
	p.expect(TokenSpread)

	if p.token.Kind == TokenName && p.token.Value != "on" {
		spread := &FragmentSpread{Name: p.token.Value, Position: pos}
		p.advance()
		spread.Directives = p.parseDirectives(false)
		return spread
	}

	inline := &InlineFragment{Position: pos}
	if p.token.Kind == TokenName {
		p.expectKeyword("on")
		inline.TypeCondition = p.expectName()
	}
	inline.Directives = p.parseDirectives(false)
	inline.SelectionSet = p.parseSelectionSet()
	return inline
}

func (p *parser) parseFragmentDefinition() *FragmentDefinition {
	frag := &FragmentDefinition{Position: p.token.Pos}
	p.expectKeyword("fragment")
	frag.Name = p.expectName()
	if frag.Name == "on" {
		p.parseErr = &ParseError{Pos: frag.Position, Expected: "a fragment name", Found: `"on"`}
		return frag
	}
	p.expectKeyword("on")
	frag.TypeCondition = p.expectName()
	frag.Directives = p.parseDirectives(false)
	frag.SelectionSet = p.parseSelectionSet()
	return frag
}

func (p *parser) parseArguments(isConst bool) ArgumentList {
	if !p.skip(TokenParenL) {
		return nil
	}
	var args ArgumentList
	for p.token.Kind != TokenParenR && p.token.Kind != TokenEOF && !p.failed() {
		arg := &Argument{Position: p.token.Pos}
		arg.Name = p.expectName()
		p.expect(TokenColon)
		arg.Value = p.parseValue(isConst)
		args = append(args, arg)
	}
	p.expect(TokenParenR)
	return args
}

func (p *parser) parseDirectives(isConst bool) DirectiveList {
	var dirs DirectiveList
	for p.token.Kind == TokenAt && !p.failed() {
		d := &Directive{Position: p.token.Pos}
		p.advance()
		d.Name = p.expectName()
		d.Arguments = p.parseArguments(isConst)
		dirs = append(dirs, d)
	}
	return dirs
}

func (p *parser) parseValue(isConst bool) *Value {
	pos := p.token.Pos
	switch p.token.Kind {
	case TokenDollar:
		if isConst {
			p.errorExpected("a constant value")
			return nil
		}
		p.advance()
		return &Value{Kind: Variable, Raw: p.expectName(), Position: pos}
	case TokenInt:
		v := &Value{Kind: IntValue, Raw: p.token.Value, Position: pos}
		p.advance()
		return v
	case TokenFloat:
		v := &Value{Kind: FloatValue, Raw: p.token.Value, Position: pos}
		p.advance()
		return v
	case TokenString:
		v := &Value{Kind: StringValue, Raw: p.token.Value, Position: pos}
		p.advance()
		return v
	case TokenBlockString:
		v := &Value{Kind: BlockValue, Raw: p.token.Value, Position: pos}
		p.advance()
		return v
	case TokenName:
		raw := p.token.Value
		p.advance()
		switch raw {
		case "true", "false":
			return &Value{Kind: BooleanValue, Raw: raw, Position: pos}
		case "null":
			return &Value{Kind: NullValue, Raw: raw, Position: pos}
		default:
			return &Value{Kind: EnumValue, Raw: raw, Position: pos}
		}
	case TokenBracketL:
		p.advance()
		v := &Value{Kind: ListValue, Position: pos}
		for p.token.Kind != TokenBracketR && p.token.Kind != TokenEOF && !p.failed() {
			v.Children = append(v.Children, &ChildValue{Value: p.parseValue(isConst)})
		}
		p.expect(TokenBracketR)
		return v
	case TokenBraceL:
		p.advance()
		v := &Value{Kind: ObjectValue, Position: pos}
		for p.token.Kind != TokenBraceR && p.token.Kind != TokenEOF && !p.failed() {
			child := &ChildValue{Name: p.expectName()}
			p.expect(TokenColon)
			child.Value = p.parseValue(isConst)
			v.Children = append(v.Children, child)
		}
		p.expect(TokenBraceR)
		return v
	default:
		p.errorExpected("a value")
		return nil
	}
}

func (p *parser) parseType() *Type {
	t := &Type{Position: p.token.Pos}
	if p.skip(TokenBracketL) {
		t.Elem = p.parseType()
		p.expect(TokenBracketR)
	} else {
		t.NamedType = p.expectName()
	}
	if p.skip(TokenBang) {
		t.NonNull = true
	}
	return t
}
