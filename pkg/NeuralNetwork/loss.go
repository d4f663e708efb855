package NeuralNetwork

// Mean Squared Error(MSE) and its gradient for regression
// Use this loss when predicting continuous values (regression problems)
func MSE(yTrue, yPred []float64) (float64, []float64) {
	n := len(yTrue)
	s := 0.0
	grad := make([]float64, n)

	for i := 0; i < n; i++ {
		e := yPred[i] - yTrue[i]
		s += e * e
		grad[i] = 2 * e / float64(n)
	}
	return s / float64(n), grad
}
