package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/tierlist/internal/model"
)

// RegisterValidators 注册自定义校验规则：tier
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("tier", func(fl validator.FieldLevel) bool {
		_, err := model.ParseTier(fl.Field().String())
		return err == nil
	})
}
