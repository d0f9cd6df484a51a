package services

import (
	"errors"

	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/nimasrn/customer-ledger/internal/repository"
)

// storeErr translates repository errors into the model error kinds.
func storeErr(op, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrCustomerNotFound) || errors.Is(err, repository.ErrTransactionNotFound) {
		return model.NewNotFoundError(resource, id)
	}
	var (
		nf *model.NotFoundError
		ve *model.ValidationError
		se *model.StoreError
	)
	if errors.As(err, &nf) || errors.As(err, &ve) || errors.As(err, &se) {
		return err
	}
	return model.NewStoreError(op, err)
}
