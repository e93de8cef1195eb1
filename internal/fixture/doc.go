// Package fixture parses conformance fixture documents into model.TestCases.
//
// A fixture is an XML document rooted at <testCases>:
//
//	<testCases xmlns="http://www.omg.org/spec/DMN/20160719/testcase"
//	           xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
//	    <modelName>0001-input-data-string.dmn</modelName>
//	    <labels><label>Compliance Level 2</label></labels>
//	    <testCase id="001">
//	        <inputNode name="Full Name">
//	            <value xsi:type="xsd:string">John Doe</value>
//	        </inputNode>
//	        <resultNode name="Greeting Message">
//	            <expected><value xsi:type="xsd:string">Hello John Doe</value></expected>
//	        </resultNode>
//	    </testCase>
//	</testCases>
//
// # Value Probing
//
// A node holding a value is probed in a fixed order: a <value> child (simple),
// then <component> children (components), then a <list> child. The first shape
// found wins; a node is never read as more than one shape.
//
// Elements are matched by local name only. The xsi:type and xsi:nil attributes
// are matched by the XML Schema instance namespace, all other attributes are
// unqualified.
//
// Missing mandatory elements, attributes or text content fail the whole
// document with a *ParseError. There is no partial result.
package fixture
