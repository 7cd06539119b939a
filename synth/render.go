package synth

import (
	"strings"

	"github.com/wherewhere/wrapgen/internal/codefmt"
	"github.com/wherewhere/wrapgen/matching"
	"github.com/wherewhere/wrapgen/typedesc"
)

// WriteExpr renders a forwarding expression as Go code.
func WriteExpr(w *codefmt.Writer, e Expr) {
	switch e := e.(type) {
	case Ident:
		w.Printf("%s", e.Name)

	case Select:
		WriteExpr(w, e.X)
		w.Printf(".%s", e.Name)

	case Call:
		WriteExpr(w, e.Fn)
		w.Printf("(")
		for i, arg := range e.Args {
			if i != 0 {
				w.Printf(", ")
			}
			WriteExpr(w, arg)
		}
		w.Printf(")")

	case Convert:
		// Converters are zero-size types with value methods.
		if !e.Conv.Converter.IsZero() {
			w.Printf("%t{}.", e.Conv.Converter.T)
		}
		w.Printf("%s(", e.Conv.Name)
		WriteExpr(w, e.X)
		w.Printf(")")

	case Lambda:
		w.Printf("func(")
		for i, param := range e.Params {
			if i != 0 {
				w.Printf(", ")
			}
			w.Printf("%s %t", param.Name, param.Type.T)
		}
		w.Printf(")")
		if !e.Result.IsZero() {
			w.Printf(" %t { return ", e.Result.T)
		} else {
			w.Printf(" { ")
		}
		WriteExpr(w, e.Body)
		w.Printf(" }")

	case FanOut:
		w.Printf("func(")
		var args []string
		if e.Handler.IsFunc() {
			sig := e.Handler.Signature
			for i := 0; i < sig.Params().Len(); i++ {
				name := w.Sprintf("a%d", i)
				args = append(args, name)
				if i != 0 {
					w.Printf(", ")
				}
				w.Printf("%s %t", name, sig.Params().At(i).Type())
			}
		}
		w.Printf(") {\n")
		w.Printf("\t\t\tfor _, h := range %s.%s {\n", recvName, e.Table)
		w.Printf("\t\t\t\th(%s)\n", strings.Join(args, ", "))
		w.Printf("\t\t\t}\n\t\t}")

	case Index:
		WriteExpr(w, e.X)
		w.Printf("[")
		WriteExpr(w, e.Key)
		w.Printf("]")

	case Assign:
		WriteExpr(w, e.LHS)
		w.Printf(" = ")
		WriteExpr(w, e.RHS)
	}
}

// WriteAuxFields renders the hidden struct fields a plan needs on the
// wrapper.
func WriteAuxFields(w *codefmt.Writer, plan MemberPlan) {
	handler := plan.Result

	if plan.Aux.OnceFlag != "" {
		w.Printf("\t%s bool\n", plan.Aux.OnceFlag)
	}
	if plan.Aux.TokenTable != "" {
		w.Printf("\t%s map[uint64]%t\n", plan.Aux.TokenTable, handler.T)
		w.Printf("\t%sSeq uint64\n", plan.Aux.TokenTable)
	}
	if plan.Aux.HandlerTable != "" {
		w.Printf("\t%s map[uintptr]%t\n", plan.Aux.HandlerTable, plan.Target.Result.T)
	}
}

// WriteMember renders one member plan as Go methods on the named wrapper
// type.
func WriteMember(w *codefmt.Writer, wrapperName string, plan MemberPlan) {
	switch plan.Kind {
	case KindCtor:
		writeCtor(w, wrapperName, plan)
	case KindMethod:
		writeMethod(w, wrapperName, plan)
	case KindDispose:
		writeDispose(w, wrapperName, plan)
	case KindProperty, KindIndexer:
		writeAccessors(w, wrapperName, plan)
	case KindEvent:
		writeEvent(w, wrapperName, plan)
	}
}

func writeParams(w *codefmt.Writer, params []typedesc.Param) {
	for i, param := range params {
		if i != 0 {
			w.Printf(", ")
		}
		w.Printf("%s %t", param.Name, param.Type.T)
	}
}

func writeCtor(w *codefmt.Writer, wrapperName string, plan MemberPlan) {
	w.Printf("func %s(", plan.Name)
	writeParams(w, plan.Params)

	if plan.Throws {
		w.Printf(") (*%s, error) {\n", wrapperName)
		w.Printf("\t%s, err := ", resultName)
		WriteExpr(w, plan.Body)
		w.Printf("\n\tif err != nil {\n\t\treturn nil, wraperrors.Wrap(%q, err)\n\t}\n",
			wrapperName+"."+plan.Name)
		w.Printf("\treturn &%s{%s: %s}, nil\n}\n", wrapperName, nativeField, resultName)
		return
	}

	w.Printf(") *%s {\n", wrapperName)
	if plan.Auto {
		w.Printf("\treturn &%s{}\n}\n", wrapperName)
		return
	}
	w.Printf("\treturn &%s{%s: ", wrapperName, nativeField)
	WriteExpr(w, plan.Body)
	w.Printf("}\n}\n")
}

func writeMethod(w *codefmt.Writer, wrapperName string, plan MemberPlan) {
	w.Printf("func ")
	if !plan.Static {
		w.Printf("(%s *%s) ", recvName, wrapperName)
	}
	w.Printf("%s(", plan.Name)
	writeParams(w, plan.Params)
	w.Printf(")")

	if plan.Throws {
		writeThrowingTail(w, wrapperName, plan)
		return
	}

	if !plan.Result.IsZero() {
		w.Printf(" %t", plan.Result.T)
	}
	w.Printf(" {\n\t")
	if !plan.Result.IsZero() {
		w.Printf("return ")
	}
	WriteExpr(w, plan.Body)
	w.Printf("\n}\n")
}

// writeThrowingTail renders the results and body of a method whose target
// carries a trailing error: the raw call first, then the converted value,
// with the error wrapped under the member path.
func writeThrowingTail(w *codefmt.Writer, wrapperName string, plan MemberPlan) {
	path := wrapperName + "." + plan.Name

	if plan.Result.IsZero() {
		w.Printf(" error {\n\tif err := ")
		WriteExpr(w, plan.Call)
		w.Printf("; err != nil {\n\t\treturn wraperrors.Wrap(%q, err)\n\t}\n\treturn nil\n}\n", path)
		return
	}

	w.Printf(" (res %t, err error) {\n", plan.Result.T)
	w.Printf("\t%s, err := ", resultName)
	WriteExpr(w, plan.Call)
	w.Printf("\n\tif err != nil {\n\t\treturn res, wraperrors.Wrap(%q, err)\n\t}\n", path)
	w.Printf("\treturn ")
	WriteExpr(w, plan.Body)
	w.Printf(", nil\n}\n")
}

func writeDispose(w *codefmt.Writer, wrapperName string, plan MemberPlan) {
	if plan.Throws {
		w.Printf("func (%s *%s) %s() error {\n\terr := ", recvName, wrapperName, plan.Name)
		WriteExpr(w, plan.Body)
		w.Printf("\n")
		if plan.Aux.SuppressFinalizer {
			w.Printf("\truntime.SetFinalizer(%s, nil)\n", recvName)
		}
		w.Printf("\treturn wraperrors.Wrap(%q, err)\n}\n", wrapperName+"."+plan.Name)
		return
	}

	w.Printf("func (%s *%s) %s() {\n\t", recvName, wrapperName, plan.Name)
	WriteExpr(w, plan.Body)
	w.Printf("\n")
	if plan.Aux.SuppressFinalizer {
		w.Printf("\truntime.SetFinalizer(%s, nil)\n", recvName)
	}
	w.Printf("}\n")
}

func writeAccessors(w *codefmt.Writer, wrapperName string, plan MemberPlan) {
	if plan.Getter != nil {
		w.Printf("func (%s *%s) %s(", recvName, wrapperName, plan.Name)
		writeParams(w, plan.Params)
		w.Printf(") %t {\n\treturn ", plan.Result.T)
		WriteExpr(w, plan.Getter)
		w.Printf("\n}\n")
	}

	if plan.Setter != nil {
		w.Printf("func (%s *%s) Set%s(", recvName, wrapperName, plan.Name)
		writeParams(w, plan.Params)
		if len(plan.Params) != 0 {
			w.Printf(", ")
		}
		w.Printf("%s %t) {\n\t", valueName, plan.Result.T)
		WriteExpr(w, plan.Setter)
		w.Printf("\n}\n")
	}
}

func writeEvent(w *codefmt.Writer, wrapperName string, plan MemberPlan) {
	switch plan.Event {
	case EventTokenTable:
		writeTokenTableEvent(w, wrapperName, plan)
	case EventWeakMap:
		writeWeakMapEvent(w, wrapperName, plan)
	default:
		writeDirectEvent(w, wrapperName, plan)
	}
}

func writeDirectEvent(w *codefmt.Writer, wrapperName string, plan MemberPlan) {
	w.Printf("func (%s *%s) Add%s(%s %t) {\n\t%s.%s.Add%s(",
		recvName, wrapperName, plan.Name, handlerName, plan.Result.T,
		recvName, nativeField, plan.Name)
	WriteExpr(w, plan.Add)
	w.Printf(")\n}\n")

	w.Printf("func (%s *%s) Remove%s(%s %t) {\n\t%s.%s.Remove%s(",
		recvName, wrapperName, plan.Name, handlerName, plan.Result.T,
		recvName, nativeField, plan.Name)
	WriteExpr(w, plan.Remove)
	w.Printf(")\n}\n")
}

// writeWeakMapEvent keys the handler association table by the handler's
// function pointer, since converted handlers never compare equal to the
// originals.
func writeWeakMapEvent(w *codefmt.Writer, wrapperName string, plan MemberPlan) {
	table := plan.Aux.HandlerTable

	w.Printf("func (%s *%s) Add%s(%s %t) {\n",
		recvName, wrapperName, plan.Name, handlerName, plan.Result.T)
	w.Printf("\tnative := ")
	WriteExpr(w, plan.Add)
	w.Printf("\n\tif %s.%s == nil {\n\t\t%s.%s = make(map[uintptr]%t)\n\t}\n",
		recvName, table, recvName, table, plan.Target.Result.T)
	w.Printf("\t%s.%s[reflect.ValueOf(%s).Pointer()] = native\n", recvName, table, handlerName)
	w.Printf("\t%s.%s.Add%s(native)\n}\n", recvName, nativeField, plan.Name)

	w.Printf("func (%s *%s) Remove%s(%s %t) {\n",
		recvName, wrapperName, plan.Name, handlerName, plan.Result.T)
	w.Printf("\tkey := reflect.ValueOf(%s).Pointer()\n", handlerName)
	w.Printf("\tif native, ok := %s.%s[key]; ok {\n", recvName, table)
	w.Printf("\t\tdelete(%s.%s, key)\n", recvName, table)
	w.Printf("\t\t%s.%s.Remove%s(native)\n\t}\n}\n", recvName, nativeField, plan.Name)
}

// writeTokenTableEvent attaches the single native handler carried by
// plan.Add on the first add; afterwards subscription only touches the token
// table.
func writeTokenTableEvent(w *codefmt.Writer, wrapperName string, plan MemberPlan) {
	flag, table := plan.Aux.OnceFlag, plan.Aux.TokenTable

	w.Printf("func (%s *%s) Add%s(%s %t) uint64 {\n",
		recvName, wrapperName, plan.Name, handlerName, plan.Result.T)
	w.Printf("\tif !%s.%s {\n\t\t%s.%s = true\n", recvName, flag, recvName, flag)
	w.Printf("\t\t%s.%s = make(map[uint64]%t)\n", recvName, table, plan.Result.T)
	w.Printf("\t\t%s.%s.Add%s(", recvName, nativeField, plan.Name)
	WriteExpr(w, plan.Add)
	w.Printf(")\n\t}\n")
	w.Printf("\t%s.%sSeq++\n", recvName, table)
	w.Printf("\t%s := %s.%sSeq\n", tokenName, recvName, table)
	w.Printf("\t%s.%s[%s] = %s\n", recvName, table, tokenName, handlerName)
	w.Printf("\treturn %s\n}\n", tokenName)

	w.Printf("func (%s *%s) Remove%s(%s uint64) {\n", recvName, wrapperName, plan.Name, tokenName)
	w.Printf("\tdelete(%s.%s, %s)\n}\n", recvName, table, tokenName)
}

// suggestStub renders the declaration the user could add to take over a
// generated member.
func (p *Planner) suggestStub(decl *matching.Decl, w typedesc.Member) string {
	var b strings.Builder

	params := func(ps []typedesc.Param) string {
		var sb strings.Builder
		for i, param := range ps {
			if i != 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(param.Name)
			sb.WriteByte(' ')
			sb.WriteString(p.fmt.Type(param.Type.T))
		}
		return sb.String()
	}

	switch w.Kind {
	case typedesc.KindConstructor:
		b.WriteString(p.fmt.Sprintf("func %s(%s) *%s", w.Name, params(w.Params), decl.Name))

	case typedesc.KindEvent:
		b.WriteString(p.fmt.Sprintf("func (%s *%s) Add%s(%s %t)",
			recvName, decl.Name, w.Name, handlerName, w.Result.T))

	case typedesc.KindProperty:
		b.WriteString(p.fmt.Sprintf("func (%s *%s) %s(%s)",
			recvName, decl.Name, w.Name, params(w.Params)))
		if !w.Result.IsZero() {
			b.WriteString(p.fmt.Sprintf(" %t", w.Result.T))
		}

	default:
		b.WriteString("func ")
		if !w.Static {
			b.WriteString(p.fmt.Sprintf("(%s *%s) ", recvName, decl.Name))
		}
		b.WriteString(p.fmt.Sprintf("%s(%s)", w.Name, params(w.Params)))
		if !w.Result.IsZero() {
			b.WriteString(p.fmt.Sprintf(" %t", w.Result.T))
		}
	}
	return b.String()
}
