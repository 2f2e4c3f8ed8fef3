// Package domain contains the records the pipeline produces: practice
// questions, challenges, report sections and the evaluations returned to
// students. Records are plain values; extraction lives in package parse and
// structural checks in package validate.
package domain
