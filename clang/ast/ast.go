package ast

// -----------------------------------------------------------------------------

type IncludedFrom struct {
	File string `json:"file"`
}

// Loc is a source location. A location produced by a macro expansion has no
// position of its own: SpellingLoc tells where its tokens are written and
// ExpansionLoc where the macro was invoked.
type Loc struct {
	Offset              int64         `json:"offset,omitempty"` // 432
	File                string        `json:"file,omitempty"`   // "test.c"
	Line                int           `json:"line,omitempty"`
	PresumedFile        string        `json:"presumedFile,omitempty"`
	PresumedLine        int           `json:"presumedLine,omitempty"`
	Col                 int           `json:"col,omitempty"`
	TokLen              int           `json:"tokLen,omitempty"`
	IncludedFrom        *IncludedFrom `json:"includedFrom,omitempty"` // "test.c"
	SpellingLoc         *Loc          `json:"spellingLoc,omitempty"`
	ExpansionLoc        *Loc          `json:"expansionLoc,omitempty"`
	IsMacroArgExpansion bool          `json:"isMacroArgExpansion,omitempty"`
}

// Range is a source range. End is the start of the last token.
type Range struct {
	Begin Loc `json:"begin"`
	End   Loc `json:"end"`
}

// -----------------------------------------------------------------------------

type ID string

type Kind string

const (
	TranslationUnitDecl       Kind = "TranslationUnitDecl"
	TypedefType               Kind = "TypedefType"
	TypedefDecl               Kind = "TypedefDecl"
	ElaboratedType            Kind = "ElaboratedType"
	BuiltinType               Kind = "BuiltinType"
	ConstantArrayType         Kind = "ConstantArrayType"
	IncompleteArrayType       Kind = "IncompleteArrayType"
	PointerType               Kind = "PointerType"
	RecordType                Kind = "RecordType"
	EnumType                  Kind = "EnumType"
	RecordDecl                Kind = "RecordDecl"
	FieldDecl                 Kind = "FieldDecl"
	IndirectFieldDecl         Kind = "IndirectFieldDecl"
	VarDecl                   Kind = "VarDecl"
	EnumDecl                  Kind = "EnumDecl"
	EnumConstantDecl          Kind = "EnumConstantDecl"
	FunctionProtoType         Kind = "FunctionProtoType"
	FunctionDecl              Kind = "FunctionDecl"
	ParmVarDecl               Kind = "ParmVarDecl"
	ParenType                 Kind = "ParenType"
	DeclStmt                  Kind = "DeclStmt"
	CompoundStmt              Kind = "CompoundStmt"
	NullStmt                  Kind = "NullStmt"
	ForStmt                   Kind = "ForStmt"
	WhileStmt                 Kind = "WhileStmt"
	DoStmt                    Kind = "DoStmt"
	GotoStmt                  Kind = "GotoStmt"
	BreakStmt                 Kind = "BreakStmt"
	ContinueStmt              Kind = "ContinueStmt"
	LabelStmt                 Kind = "LabelStmt"
	IfStmt                    Kind = "IfStmt"
	SwitchStmt                Kind = "SwitchStmt"
	CaseStmt                  Kind = "CaseStmt"
	DefaultStmt               Kind = "DefaultStmt"
	ReturnStmt                Kind = "ReturnStmt"
	ParenExpr                 Kind = "ParenExpr"
	CallExpr                  Kind = "CallExpr"
	ConstantExpr              Kind = "ConstantExpr"
	CStyleCastExpr            Kind = "CStyleCastExpr"
	DeclRefExpr               Kind = "DeclRefExpr"
	MemberExpr                Kind = "MemberExpr"
	ImplicitCastExpr          Kind = "ImplicitCastExpr"
	BinaryOperator            Kind = "BinaryOperator"
	CompoundAssignOperator    Kind = "CompoundAssignOperator"
	UnaryOperator             Kind = "UnaryOperator"
	ConditionalOperator       Kind = "ConditionalOperator"
	ArraySubscriptExpr        Kind = "ArraySubscriptExpr"
	CompoundLiteralExpr       Kind = "CompoundLiteralExpr"
	InitListExpr              Kind = "InitListExpr"
	ImplicitValueInitExpr     Kind = "ImplicitValueInitExpr"
	UnaryExprOrTypeTraitExpr  Kind = "UnaryExprOrTypeTraitExpr"
	CharacterLiteral          Kind = "CharacterLiteral"
	IntegerLiteral            Kind = "IntegerLiteral"
	FloatingLiteral           Kind = "FloatingLiteral"
	StringLiteral             Kind = "StringLiteral"
	StmtExpr                  Kind = "StmtExpr"
	DesignatedInitExpr        Kind = "DesignatedInitExpr"
	StaticAssertDecl          Kind = "StaticAssertDecl"
	FullComment               Kind = "FullComment"
	TransparentUnionAttr      Kind = "TransparentUnionAttr"
	BuiltinAttr               Kind = "BuiltinAttr"
	AsmLabelAttr              Kind = "AsmLabelAttr"
	AlwaysInlineAttr          Kind = "AlwaysInlineAttr"
	DeprecatedAttr            Kind = "DeprecatedAttr"
	PackedAttr                Kind = "PackedAttr"
	NoThrowAttr               Kind = "NoThrowAttr"
	MaxFieldAlignmentAttr     Kind = "MaxFieldAlignmentAttr"
	AlignedAttr               Kind = "AlignedAttr"
	VisibilityAttr            Kind = "VisibilityAttr"
	WarnUnusedResultAttr      Kind = "WarnUnusedResultAttr"
	ImplicitConversionSummary Kind = "ImplicitConversionSummary"
)

type ValueCategory string

const (
	RValue ValueCategory = "rvalue"
	LValue ValueCategory = "lvalue"
	PRValue ValueCategory = "prvalue"
)

type StorageClass string

const (
	Static StorageClass = "static"
	Extern StorageClass = "extern"
)

type CastKind string

const (
	LValueToRValue         CastKind = "LValueToRValue"
	IntegralCast           CastKind = "IntegralCast"
	FunctionToPointerDecay CastKind = "FunctionToPointerDecay"
	ArrayToPointerDecay    CastKind = "ArrayToPointerDecay"
	NoOp                   CastKind = "NoOp"
)

type (
	// OpCode can be:
	//   + - * / || >= -- ++ etc
	OpCode string
)

type Type struct {
	// QualType can be:
	//   unsigned int
	//   struct AVRational
	//   AVRational
	//   int *[4]
	//   const char [7]
	//   ...
	QualType          string `json:"qualType"`
	DesugaredQualType string `json:"desugaredQualType,omitempty"`
	TypeAliasDeclID   ID     `json:"typeAliasDeclId,omitempty"`
}

type Node struct {
	ID                   ID            `json:"id,omitempty"`
	Kind                 Kind          `json:"kind,omitempty"`
	Loc                  *Loc          `json:"loc,omitempty"`
	Range                *Range        `json:"range,omitempty"`
	ReferencedMemberDecl ID            `json:"referencedMemberDecl,omitempty"`
	PreviousDecl         ID            `json:"previousDecl,omitempty"`
	ParentDeclContextID  ID            `json:"parentDeclContextId,omitempty"`
	IsImplicit           bool          `json:"isImplicit,omitempty"`   // is this type implicit defined
	IsReferenced         bool          `json:"isReferenced,omitempty"` // is this type refered or not
	IsUsed               bool          `json:"isUsed,omitempty"`       // is this variable used or not
	IsArrow              bool          `json:"isArrow,omitempty"`      // is ptr->member not obj.member
	IsPostfix            bool          `json:"isPostfix,omitempty"`
	IsPartOfExplicitCast bool          `json:"isPartOfExplicitCast,omitempty"`
	HasElse              bool          `json:"hasElse,omitempty"`
	HasInit              bool          `json:"hasInit,omitempty"`
	HasVar               bool          `json:"hasVar,omitempty"`
	FileScope            bool          `json:"fileScope,omitempty"` // compound literal at file scope
	Inline               bool          `json:"inline,omitempty"`
	StorageClass         StorageClass  `json:"storageClass,omitempty"`
	TagUsed              string        `json:"tagUsed,omitempty"` // struct | union
	CompleteDefinition   bool          `json:"completeDefinition,omitempty"`
	Name                 string        `json:"name,omitempty"`
	MangledName          string        `json:"mangledName,omitempty"`
	Type                 *Type         `json:"type,omitempty"`
	Decl                 *Node         `json:"decl,omitempty"`
	OwnedTagDecl         *Node         `json:"ownedTagDecl,omitempty"`
	ReferencedDecl       *Node         `json:"referencedDecl,omitempty"`
	OpCode               OpCode        `json:"opcode,omitempty"`
	Init                 string        `json:"init,omitempty"`
	ValueCategory        ValueCategory `json:"valueCategory,omitempty"`
	Value                interface{}   `json:"value,omitempty"`
	CastKind             CastKind      `json:"castKind,omitempty"`
	Size                 int           `json:"size,omitempty"` // array size
	Inner                []*Node       `json:"inner,omitempty"`
	ArrayFiller          []*Node       `json:"array_filler,omitempty"`
}

// -----------------------------------------------------------------------------
