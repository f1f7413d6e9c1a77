package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkProgram(t *testing.T, content string) (*Package, *CheckResult, *ErrorReporter) {
	pkg, bindings, reporter, err := identifyProgram(t, content)
	require.Nil(t, err, content)
	return pkg, NewTypeChecker(reporter, bindings).Check(pkg), reporter
}

func TestTypeChecker_ValidProgram(t *testing.T) {
	content := `class Main {
	static int[] values;
	Node head;

	public static void main(String[] args) {
		values = new int[10];
		int i = 0;
		while (i < values.length) {
			values[i] = i * i;
			i = i + 1;
		}
		boolean done = !(i != 10) && true || false;
		Main m = new Main();
		m.head = null;
		if (m.head == null) m.push(-3); else { }
		System.out.println(m.sum(values, values.length));
	}

	void push(int v) {
		Node n = new Node();
		n.value = v;
		n.next = head;
		head = n;
		return;
	}

	int sum(int[] a, int n) {
		int s = 0;
		while (n > 0) { n = n - 1; s = s + a[n]; }
		return s;
	}
}

class Node {
	int value;
	Node next;
}`
	pkg, result, reporter := checkProgram(t, content)
	assert.False(t, reporter.HasErrors(), reporter.Messages())
	require.NotNil(t, result.Main)
	assert.Equal(t, pkg.Classes[0].Methods[0], result.Main)

	// int s = 0; ... return s;
	sum := pkg.Classes[0].Methods[2]
	ret := sum.Statements[2].(*ReturnStatement)
	assert.Equal(t, "int", result.Types[ret.Value].String())
	whileStatement := sum.Statements[1].(*WhileStatement)
	assert.Equal(t, "boolean", result.Types[whileStatement.Condition].String())
	body := whileStatement.Body.(*BlockStatement).Statements[1].(*AssignStatement)
	index := body.Value.(*BinaryExpression).Right.(*IndexExpression)
	assert.Equal(t, "int[]", result.Types[index.Ref].String())
	assert.Equal(t, "int", result.Types[index].String())
}

func TestTypeChecker_Errors(t *testing.T) {
	testData := []struct {
		Content string
		Msg     string
	}{
		{Content: mainProgram("int x = true;"), Msg: "expected type int but found boolean"},
		{Content: mainProgram("boolean b = 1 + 2;"), Msg: "expected type boolean but found int"},
		{Content: mainProgram("int x = null;"), Msg: "expected type int but found null"},
		{Content: mainProgram("int x = 1 + true;"), Msg: "operator + expects int operands but found int and boolean"},
		{Content: mainProgram("boolean b = 1 && true;"), Msg: "operator && expects boolean operands"},
		{Content: mainProgram("boolean b = true < false;"), Msg: "operator < expects int operands"},
		{Content: mainProgram("boolean b = 1 == true;"), Msg: "operator == cannot compare int with boolean"},
		{Content: mainProgram("boolean b = !1;"), Msg: "operator ! expects boolean but found int"},
		{Content: mainProgram("int x = -true;"), Msg: "operator - expects int but found boolean"},
		{Content: mainProgram("if (1) { }"), Msg: "if condition must be boolean but found int"},
		{Content: mainProgram("while (0) { }"), Msg: "while condition must be boolean but found int"},
		{Content: mainProgram("if (true) int x = 1;"), Msg: "variable declaration cannot be the only statement of a branch"},
		{Content: mainProgram("if (true) { } else int x = 1;"), Msg: "variable declaration cannot be the only statement of a branch"},
		{Content: mainProgram("while (false) int x = 1;"), Msg: "variable declaration cannot be the only statement of a branch"},
		{Content: mainProgram("int[] a = new int[true];"), Msg: "array size must be int but found boolean"},
		{Content: mainProgram("int[] a = new int[2]; a[false] = 1;"), Msg: "array index must be int but found boolean"},
		{Content: mainProgram("int[] a = new int[2]; a[0] = false;"), Msg: "expected type int but found boolean"},
		{Content: mainProgram("int a = 1; a[0] = 1;"), Msg: "indexed value must be an array but found int"},
		{Content: mainProgram("int a = 1; int b = a[0];"), Msg: "indexed value must be an array but found int"},
		{Content: mainProgram("int[] a = new int[2]; a.length = 3;"), Msg: "cannot assign to the length of an array"},
		{Content: mainProgram("Main = null;"), Msg: "cannot assign to class Main"},
		{Content: "class A { void f() { this = null; } public static void main(String[] args) { } }",
			Msg: "cannot assign to 'this'"},
		{Content: "class A { static void f() { } public static void main(String[] args) { f = 1; } }",
			Msg: "cannot assign to method f"},
		{Content: "class A { static int f() { return 1; } public static void main(String[] args) { int x = f; } }",
			Msg: "method f used as a value"},
		{Content: mainProgram("int x = Main;"), Msg: "class Main used as a value"},
		{Content: "class A { static void f() { } public static void main(String[] args) { boolean b = f() == f(); } }",
			Msg: "operator == cannot compare void with void"},
		{Content: mainProgram("System.out.println(true);"), Msg: "argument 1 of println must be int but found boolean"},
		{Content: mainProgram("System.out.println(1, 2);"), Msg: "method println expects 1 arguments but found 2"},
		{Content: "class A { static int f() { } public static void main(String[] args) { } }",
			Msg: "method f must end with a return statement"},
		{Content: "class A { static int f() { if (true) return 1; } public static void main(String[] args) { } }",
			Msg: "method f must end with a return statement"},
		{Content: "class A { static int f() { return; } public static void main(String[] args) { } }",
			Msg: "method f must return a value of type int"},
		{Content: "class A { static int f() { return true; } public static void main(String[] args) { } }",
			Msg: "expected type int but found boolean"},
		{Content: mainProgram("return 1;"), Msg: "void method main cannot return a value"},
		{Content: "class A { static void f(A a) { } public static void main(String[] args) { f(new B()); } } class B { }",
			Msg: "argument 1 of f must be A but found B"},
		{Content: "class A { }", Msg: "no method public static void main(String[] args) found"},
		{Content: "class A { public static int main(String[] args) { return 0; } }", Msg: "no method public static void main"},
		{Content: "class A { public void main(String[] args) { } }", Msg: "no method public static void main"},
		{Content: "class A { private static void main(String[] args) { } }", Msg: "no method public static void main"},
		{Content: "class A { public static void main(int[] args) { } }", Msg: "no method public static void main"},
		{Content: "class A { public static void main(String[] args, int n) { } }", Msg: "no method public static void main"},
		{Content: "class A { public static void main(String[] args) { } } class B { static void main(String[] a) { } }",
			Msg: "more than one main method"},
	}
	for _, data := range testData {
		_, _, reporter := checkProgram(t, data.Content)
		require.Equal(t, 1, reporter.ErrorCount(), "%s: %v", data.Content, reporter.Messages())
		assert.Contains(t, reporter.Messages()[0], "Type error: "+data.Msg, data.Content)
	}
}

func TestTypeChecker_ErrorTypeIsNotReportedAgain(t *testing.T) {
	content := mainProgram(`
		int x = (true + 1) * 2 - 3;
		boolean b = !(x < false) && true;
		System.out.println((1 + true) * 4);`)
	_, _, reporter := checkProgram(t, content)
	assert.Equal(t, 3, reporter.ErrorCount(), reporter.Messages())
}

func TestTypeChecker_KeepsCheckingAfterErrors(t *testing.T) {
	content := mainProgram(`
		int x = true;
		if (x) { }
		boolean b = 3;`)
	_, _, reporter := checkProgram(t, content)
	assert.Equal(t, 3, reporter.ErrorCount(), reporter.Messages())
}

func TestTypeChecker_NullAssignments(t *testing.T) {
	content := `class A {
	A next;
	int[] values;
	public static void main(String[] args) {
		A a = null;
		int[] v = null;
		a = new A();
		a.next = null;
		a.values = null;
		boolean b = a == null || null != a.values;
	}
}`
	_, _, reporter := checkProgram(t, content)
	assert.False(t, reporter.HasErrors(), reporter.Messages())
}
