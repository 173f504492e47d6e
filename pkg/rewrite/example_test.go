package rewrite_test

import (
	"fmt"

	"github.com/lwmacct/251220-go-bin-proprw/pkg/rewrite"
)

// ExampleApply 演示按顺序替换 properties 模板中的占位符
func ExampleApply() {
	doc := "region=AWS_REGION\nstream=STREAM_NAME\napp=APPLICATION_NAME\n"

	out := rewrite.Apply(doc, []rewrite.Rule{
		{Token: "AWS_REGION", Value: "us-west-2"},
		{Token: "STREAM_NAME", Value: "orders"},
		{Token: "APPLICATION_NAME", Value: "orders-consumer"},
	})
	fmt.Print(out)

	// Output:
	// region=us-west-2
	// stream=orders
	// app=orders-consumer
}
