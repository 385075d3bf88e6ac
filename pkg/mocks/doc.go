// Package mocks holds gomock doubles of the resolver's injectable interfaces
package mocks

//go:generate mockgen -destination=environment.go -package=mocks github.com/cratekit/cratekit/pkg/config Environment
//go:generate mockgen -destination=globber.go -package=mocks github.com/cratekit/cratekit/pkg/utils Globber
