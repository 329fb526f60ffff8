package testutil

// UnlitGUID is the GUID tests register UnlitTemplate under.
const UnlitGUID = "6e114a916ca3e4b4bb51972669d463bf"

// UnlitTemplate is a single pass template with one vertex and one fragment
// port, every render state at pass level and a subshader cull.
const UnlitTemplate = `Shader /*ase_name*/"Hidden/Templates/Unlit"/*end*/
{
	Properties
	{
		_MainTex ("Sprite Texture", 2D) = "white" {}
		_Color ("Tint", Color) = (1,1,1,1)
		/*ase_props*/
	}

	SubShader
	{
		Tags { "RenderType"="Opaque" }
		LOD 100
		Cull Off

		Pass
		{
			Name "Unlit"
			Blend SrcAlpha OneMinusSrcAlpha
			BlendOp Add
			ColorMask RGBA
			ZWrite On
			ZTest LEqual
			Offset 0 , 0
			Stencil
			{
				Ref 2
				Comp Always
				Pass Replace
			}

			CGPROGRAM
			#pragma target 3.0
			#pragma vertex vert
			#pragma fragment frag
			#include "UnityCG.cginc"
			/*ase_pragma*/

			struct appdata
			{
				float4 vertex : POSITION;
				float4 texcoord : TEXCOORD0;
				/*ase_vdata:p=vertex;uv0=texcoord.xy*/
			};

			struct v2f
			{
				float4 pos : SV_POSITION;
				float4 texcoord : TEXCOORD0;
				/*ase_interp(1,):sp=sp.xyzw;uv0=tc0.xy*/
			};

			uniform sampler2D _MainTex;
			uniform fixed4 _Color;
			/*ase_globals*/

			v2f vert ( appdata v /*ase_vert_input*/)
			{
				v2f o;
				/*ase_vert_code:v=appdata;o=v2f*/
				v.vertex.xyz += /*ase_vert_out:Vertex Offset;Float3*/ float3(0,0,0) /*end*/;
				o.pos = UnityObjectToClipPos(v.vertex);
				o.texcoord = v.texcoord;
				return o;
			}

			fixed4 frag (v2f i /*ase_frag_input*/) : SV_Target
			{
				fixed4 myColorVar;
				/*ase_frag_code:i=v2f*/
				myColorVar = /*ase_frag_out:Frag Color;Float4*/fixed4(1,0,0,1)/*end*/;
				myColorVar.a *= /*ase_frag_out:Alpha;Float*/0.5/*end*/;
				return myColorVar;
			}
			ENDCG
		}
	}
}
`

// MultiPassGUID is the GUID tests register MultiPassTemplate under.
const MultiPassGUID = "e1de45c0d41f68c41b2cc20c8b9c05ef"

// MultiPassTemplate has two subshaders. The first holds a visible forward
// pass and a hidden shadow pass whose port links to the forward pass.
const MultiPassTemplate = `Shader /*ase_name*/"Hidden/Templates/MultiPass"/*end*/
{
	Properties
	{
		/*ase_props*/
	}

	SubShader
	{
		Tags { "RenderType"="Opaque" }
		Cull Back

		Pass
		{
			Name "Forward"
			Tags { "LightMode"="ForwardBase" }
			ZWrite On
			Stencil
			{
				Ref 1
			}

			CGPROGRAM
			#pragma vertex vert
			#pragma fragment frag
			/*ase_pragma*/

			struct v2f { float4 pos : SV_POSITION; };
			/*ase_globals*/

			v2f vert ( float4 vertex : POSITION )
			{
				v2f o;
				/*ase_vert_code:v=appdata;o=v2f*/
				o.pos = UnityObjectToClipPos(vertex);
				return o;
			}

			fixed4 frag ( v2f i ) : SV_Target
			{
				/*ase_frag_code:i=v2f*/
				return /*ase_frag_out:Color;Float4;0*/fixed4(1,1,1,1)/*end*/;
			}
			ENDCG
		}

		Pass
		{
			Name "ShadowCaster"
			/*ase_hide_pass*/

			CGPROGRAM
			#pragma vertex vert
			#pragma fragment frag
			/*ase_pragma*/

			struct v2f { float4 pos : SV_POSITION; };

			v2f vert ( float4 vertex : POSITION )
			{
				v2f o;
				o.pos = UnityObjectToClipPos(vertex);
				return o;
			}

			fixed4 frag ( v2f i ) : SV_Target
			{
				/*ase_frag_code:i=v2f*/
				return /*ase_frag_out:Color;Float4;1;0;Forward:Color*/fixed4(0,0,0,0)/*end*/;
			}
			ENDCG
		}
	}

	SubShader
	{
		LOD 200

		Pass
		{
			Name "Fallback"
			Blend One One

			CGPROGRAM
			#pragma vertex vert
			#pragma fragment frag
			/*ase_pragma*/
			/*ase_globals*/

			float4 vert ( float4 vertex : POSITION ) : SV_POSITION
			{
				return UnityObjectToClipPos(vertex);
			}

			fixed4 frag () : SV_Target
			{
				/*ase_frag_code:i=v2f*/
				return /*ase_frag_out:Color;Float4*/fixed4(1,1,1,1)/*end*/;
			}
			ENDCG
		}
	}
}
`
