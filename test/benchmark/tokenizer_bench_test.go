package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/indexer/tokenizer"
)

var sampleTexts = map[string]string{
	"short":  "Curso Básico de Excel Ofimática Ana López",
	"medium": "Preparación de Oposiciones a Policía Nacional: temario completo, psicotécnicos y pruebas físicas para la escala básica con ejercicios resueltos",
	"long": strings.Repeat(`Programación avanzada en entornos de administración de sistemas,
        contabilidad financiera y gestión de recursos humanos. Introducción a las
        herramientas ofimáticas, hojas de cálculo y bases de datos relacionales. `, 20),
}

func BenchmarkTokenize(b *testing.B) {
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = tokenizer.Terms(text)
			}
		})
	}
}

func BenchmarkTokenizeParallel(b *testing.B) {
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = tokenizer.Terms(text)
		}
	})
}

func BenchmarkNormalize(b *testing.B) {
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	for i := 0; i < b.N; i++ {
		_ = tokenizer.Normalize(text)
	}
}

func BenchmarkStem(b *testing.B) {
	words := []string{
		"programacion", "administracion", "ofimaticas", "contabilidad",
		"oposiciones", "avanzados", "basicamente", "policias",
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, w := range words {
			_ = tokenizer.Stem(w)
		}
	}
}

func BenchmarkTokenizeVaryingSize(b *testing.B) {
	baseWord := "programación avanzada de excel para oposiciones "
	for _, size := range []int{10, 100, 500, 1000, 5000} {
		text := strings.Repeat(baseWord, size/len(baseWord)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = tokenizer.Terms(text)
			}
		})
	}
}
